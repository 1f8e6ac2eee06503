// Package leaderboard keeps the best score of every player and persists it.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultCapacity is the number of players kept when New is given zero.
const DefaultCapacity = 100

// AnonymousName replaces empty player names.
const AnonymousName = "anonymous"

// Entry is one player's best score.
type Entry struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	At    time.Time `json:"at"`
}

// Result describes a submission.
type Result struct {
	Best    int  // The player's best score after the submission
	Rank    int  // 1-based position on the board, 0 if not on it
	NewBest bool // The submission raised the player's best
}

// Board is a bounded, sorted set of best scores. Safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	store    Store
	capacity int
	entries  []Entry
	dirty    bool
	version  uint64
	logger   *log.Logger
}

// New creates an empty board. Call Load to read persisted scores.
func New(store Store, capacity int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Board{store: store, capacity: capacity}
}

// SetLogger enables logging of background flush failures.
func (b *Board) SetLogger(l *log.Logger) {
	b.mu.Lock()
	b.logger = l
	b.mu.Unlock()
}

// Load replaces the board with the store's contents.
func (b *Board) Load() error {
	entries, err := b.store.Load()
	if err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
	for _, e := range entries {
		b.mergeLocked(e)
	}
	b.sortLocked()
	b.dirty = false
	b.version++
	return nil
}

// Reload picks up changes written by another process. Unflushed local
// submissions are kept and win over stored scores that are lower.
func (b *Board) Reload() error {
	entries, err := b.store.Load()
	if err != nil {
		return fmt.Errorf("reload leaderboard: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	before := b.snapshotLocked(len(b.entries))
	for _, e := range entries {
		b.mergeLocked(e)
	}
	b.sortLocked()
	if !equalEntries(before, b.entries) {
		b.version++
	}
	return nil
}

// Submit records score for name at the given time.
func (b *Board) Submit(name string, score int, at time.Time) Result {
	name = NormalizeName(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	if score <= 0 {
		return b.resultLocked(name, false)
	}
	if !b.mergeLocked(Entry{Name: name, Score: score, At: at}) {
		return b.resultLocked(name, false)
	}
	b.sortLocked()
	if b.indexLocked(name) < 0 {
		// Too low for a full board; nothing changed.
		return Result{}
	}
	b.dirty = true
	b.version++
	return b.resultLocked(name, true)
}

// Top returns up to n best entries. n <= 0 returns all of them.
func (b *Board) Top(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked(n)
}

// Best returns the best score recorded for name, or 0.
func (b *Board) Best(name string) int {
	name = NormalizeName(name)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexLocked(name); i >= 0 {
		return b.entries[i].Score
	}
	return 0
}

// Len returns the number of players on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Version increases every time the visible ranking changes.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Flush saves the board if it changed since the last successful save.
func (b *Board) Flush() error {
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return nil
	}
	entries := b.snapshotLocked(0)
	b.dirty = false
	b.mu.Unlock()

	if err := b.store.Save(entries); err != nil {
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
		return fmt.Errorf("flush leaderboard: %w", err)
	}
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more.
func (b *Board) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.Flush()
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.mu.RLock()
				l := b.logger
				b.mu.RUnlock()
				if l != nil {
					l.Error("Could not save high scores", "error", err)
				}
			}
		}
	}
}

// NormalizeName trims name and substitutes AnonymousName for an empty one.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName
	}
	return name
}

// mergeLocked keeps the higher of e and the existing entry for e.Name.
// Returns true if the board changed.
func (b *Board) mergeLocked(e Entry) bool {
	if e.Score <= 0 {
		return false
	}
	e.Name = NormalizeName(e.Name)
	if i := b.indexLocked(e.Name); i >= 0 {
		if e.Score <= b.entries[i].Score {
			return false
		}
		b.entries[i] = e
		return true
	}
	b.entries = append(b.entries, e)
	return true
}

// sortLocked orders by score (desc), then earlier time, then name, and drops
// entries past capacity.
func (b *Board) sortLocked() {
	sort.SliceStable(b.entries, func(i, j int) bool {
		return less(b.entries[i], b.entries[j])
	})
	if len(b.entries) > b.capacity {
		clear(b.entries[b.capacity:])
		b.entries = b.entries[:b.capacity]
	}
}

func less(a, c Entry) bool {
	if a.Score != c.Score {
		return a.Score > c.Score
	}
	if !a.At.Equal(c.At) {
		return a.At.Before(c.At)
	}
	return a.Name < c.Name
}

func (b *Board) indexLocked(name string) int {
	for i := range b.entries {
		if b.entries[i].Name == name {
			return i
		}
	}
	return -1
}

func (b *Board) resultLocked(name string, changed bool) Result {
	i := b.indexLocked(name)
	if i < 0 {
		return Result{}
	}
	return Result{Best: b.entries[i].Score, Rank: i + 1, NewBest: changed}
}

func (b *Board) snapshotLocked(n int) []Entry {
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	return append([]Entry(nil), b.entries[:n]...)
}

func equalEntries(a, c []Entry) bool {
	if len(a) != len(c) {
		return false
	}
	for i := range a {
		if a[i].Name != c[i].Name || a[i].Score != c[i].Score || !a[i].At.Equal(c[i].At) {
			return false
		}
	}
	return true
}
