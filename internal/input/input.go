// Package input turns raw terminal bytes into per-frame game input.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
// Flaps, Enter and Pause are edge-triggered (seen this frame); Quit and Escape
// stay held for keyHoldDuration.
type Input struct {
	Flaps   int
	Quit    bool
	Enter   bool
	Pause   bool
	Escape  bool
	Pressed []byte
}

// Any reports whether a key was pressed this frame.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	quit   time.Time
	escape time.Time
}

// Stream delivers input bytes via a channel and tracks key state between frames.
type Stream struct {
	ch    chan byte
	state keyState
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return parse(&s.state, buf, time.Now())
}

// ResetKeyInput forgets held keys so a press that started a game does not
// also trigger the next screen.
func ResetKeyInput(s *Stream) {
	if s == nil {
		return
	}
	s.state = keyState{}
}

// parse applies buf to the key state and builds the frame's Input.
func parse(state *keyState, buf []byte, now time.Time) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if buf[i+2] == 'A' { // Up arrow
				in.Flaps++
			}
			i += 2
			continue
		}

		switch b {
		case ' ', 'w', 'W', 'k', 'K':
			in.Flaps++
		case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
			state.quit = now
		case '\n', '\r':
			in.Enter = true
		case 'p', 'P':
			in.Pause = true
		case '\x1b':
			state.escape = now
		}
	}

	in.Quit = now.Sub(state.quit) < keyHoldDuration
	in.Escape = now.Sub(state.escape) < keyHoldDuration
	return in
}
