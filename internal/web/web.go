// Package web serves the landing page and the live high score table.
package web

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/flappy/internal/leaderboard"
)

const (
	defaultPollInterval = time.Second
	defaultLimit        = 10
	maxLimit            = 100
	writeWait           = 5 * time.Second
)

//go:embed index.html
var htmlPage string

// Options configures the handler.
type Options struct {
	SSHHost      string        // Host shown in the connect command
	Logger       *log.Logger   // Nil discards log output
	PollInterval time.Duration // How often websocket feeds check for changes
	Limit        int           // Entries per message
	Players      func() int    // Online player count; nil reports zero
}

// scoresMessage is the payload of /scores and of every websocket frame.
type scoresMessage struct {
	Type    string              `json:"type"`
	Players int                 `json:"players"`
	Scores  []leaderboard.Entry `json:"scores"`
}

// Handler serves "/", "/scores" and "/ws".
type Handler struct {
	board    *leaderboard.Board
	opts     Options
	logger   *log.Logger
	page     string
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewHandler builds a handler over the board.
func NewHandler(board *leaderboard.Board, opts Options) *Handler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.SSHHost == "" {
		opts.SSHHost = "localhost"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := &Handler{
		board:  board,
		opts:   opts,
		logger: logger,
		page:   strings.ReplaceAll(htmlPage, "{{.SSHHost}}", opts.SSHHost),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}
	h.mux.HandleFunc("/", h.serveIndex)
	h.mux.HandleFunc("/scores", h.serveScores)
	h.mux.HandleFunc("/ws", h.serveWS)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, h.page)
}

func (h *Handler) serveScores(w http.ResponseWriter, r *http.Request) {
	limit := h.opts.Limit
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	data, err := json.Marshal(h.message(limit))
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// serveWS pushes the table on connect and again whenever the board or the
// player count changes.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	// Inbound frames are ignored; a read error means the peer went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	version := h.board.Version()
	players := h.players()
	if err := h.send(conn, h.opts.Limit); err != nil {
		return
	}

	ticker := time.NewTicker(h.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			v, p := h.board.Version(), h.players()
			if v == version && p == players {
				continue
			}
			version, players = v, p
			if err := h.send(conn, h.opts.Limit); err != nil {
				h.logger.Debug("Websocket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, limit int) error {
	data, err := json.Marshal(h.message(limit))
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Handler) message(limit int) scoresMessage {
	scores := h.board.Top(limit)
	if scores == nil {
		scores = []leaderboard.Entry{}
	}
	return scoresMessage{Type: "scores", Players: h.players(), Scores: scores}
}

func (h *Handler) players() int {
	if h.opts.Players == nil {
		return 0
	}
	return h.opts.Players()
}
