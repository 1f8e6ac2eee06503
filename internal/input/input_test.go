package input

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		buf       string
		wantFlaps int
		wantQuit  bool
		wantEnter bool
		wantPause bool
	}{
		{"Nothing", "", 0, false, false, false},
		{"Space flaps", " ", 1, false, false, false},
		{"Repeated presses count", "  w", 3, false, false, false},
		{"Up arrow flaps", "\x1b[A", 1, false, false, false},
		{"Other arrows ignored", "\x1b[B\x1b[C", 0, false, false, false},
		{"Quit", "q", 0, true, false, false},
		{"Ctrl+C quits", "\x03", 0, true, false, false},
		{"Enter", "\r", 0, false, true, false},
		{"Pause", "p", 0, false, false, true},
		{"Mixed", "p \r", 1, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st keyState
			in := parse(&st, []byte(tt.buf), time.Now())
			if in.Flaps != tt.wantFlaps {
				t.Errorf("Expected %d flaps, got %d", tt.wantFlaps, in.Flaps)
			}
			if in.Quit != tt.wantQuit {
				t.Errorf("Expected Quit %v, got %v", tt.wantQuit, in.Quit)
			}
			if in.Enter != tt.wantEnter {
				t.Errorf("Expected Enter %v, got %v", tt.wantEnter, in.Enter)
			}
			if in.Pause != tt.wantPause {
				t.Errorf("Expected Pause %v, got %v", tt.wantPause, in.Pause)
			}
			if in.Any() != (len(tt.buf) > 0) {
				t.Errorf("Expected Any to reflect pressed bytes")
			}
		})
	}
}

func TestHeldKeysExpire(t *testing.T) {
	var st keyState
	now := time.Now()
	if in := parse(&st, []byte("q"), now); !in.Quit {
		t.Fatal("Expected Quit on press")
	}
	if in := parse(&st, nil, now.Add(10*time.Millisecond)); !in.Quit {
		t.Error("Expected Quit to be held shortly after press")
	}
	if in := parse(&st, nil, now.Add(keyHoldDuration+time.Millisecond)); in.Quit {
		t.Error("Expected Quit to be released after hold duration")
	}
}

func TestEdgeTriggeredKeysDoNotRepeat(t *testing.T) {
	var st keyState
	now := time.Now()
	parse(&st, []byte(" p"), now)
	in := parse(&st, nil, now.Add(time.Millisecond))
	if in.Flaps != 0 || in.Pause {
		t.Errorf("Expected no repeat on the next frame, got %+v", in)
	}
}

func TestStreamDeliversBytes(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("  ")))

	deadline := time.Now().Add(time.Second)
	flaps := 0
	for flaps < 2 && time.Now().Before(deadline) {
		flaps += ReadInput(s).Flaps
		time.Sleep(time.Millisecond)
	}
	if flaps != 2 {
		t.Errorf("Expected 2 flaps from the stream, got %d", flaps)
	}

	ResetKeyInput(s)
	ResetKeyInput(nil)
}
