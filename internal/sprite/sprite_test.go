package sprite

import (
	"errors"
	"testing"

	"github.com/tomz197/flappy/internal/draw"
)

func TestParse(t *testing.T) {
	s, err := Parse("test", []byte("# comment\nYK\n.\n\nWWW\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.Width != 3 || s.Height != 3 {
		t.Fatalf("Expected 3x3, got %dx%d", s.Width, s.Height)
	}

	want := []draw.Color{
		draw.ColorYellow, draw.ColorBlack, draw.ColorNone,
		draw.ColorNone, draw.ColorNone, draw.ColorNone,
		draw.ColorWhite, draw.ColorWhite, draw.ColorWhite,
	}
	for i, c := range want {
		if s.Pixels[i] != c {
			t.Errorf("Expected pixel %d to be %v, got %v", i, c, s.Pixels[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Empty", ""},
		{"Only comments", "# nothing\n# here\n"},
		{"Unknown colour", "YY\nY?\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.name, []byte(tt.data)); err == nil {
				t.Error("Expected Parse to fail")
			}
		})
	}
}

func TestLoadEmbeddedAssets(t *testing.T) {
	for _, name := range []string{"bird_up", "bird_mid", "bird_down", "pipe_cap"} {
		t.Run(name, func(t *testing.T) {
			s, err := Load(name)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if s.Width == 0 || s.Height == 0 {
				t.Errorf("Expected non-empty sprite, got %dx%d", s.Width, s.Height)
			}
		})
	}

	bird := MustLoad("bird_mid")
	for _, name := range []string{"bird_up", "bird_down"} {
		s := MustLoad(name)
		if s.Width != bird.Width || s.Height != bird.Height {
			t.Errorf("Expected %s to match bird_mid size %dx%d, got %dx%d", name, bird.Width, bird.Height, s.Width, s.Height)
		}
	}

	if _, err := Load("does_not_exist"); !errors.Is(err, ErrUnknownSprite) {
		t.Errorf("Expected ErrUnknownSprite, got %v", err)
	}
}

func TestSpriteDraw(t *testing.T) {
	s, err := Parse("dot", []byte(".R\n"))
	if err != nil {
		t.Fatal(err)
	}
	c := draw.NewCanvas(4, 2)
	s.Draw(c, 1, 2)
	if got := c.PixelAt(2, 2); got != draw.ColorRed {
		t.Errorf("Expected red pixel at (2,2), got %v", got)
	}
	if got := c.PixelAt(1, 2); got != draw.ColorNone {
		t.Errorf("Expected transparent pixel at (1,2), got %v", got)
	}

	wide := draw.NewCanvas(8, 2)
	s.DrawStretched(wide, 0, 0, 4)
	if got := wide.PixelAt(3, 0); got != draw.ColorRed {
		t.Errorf("Expected stretched sprite to fill right half, got %v", got)
	}
	if got := wide.PixelAt(0, 0); got != draw.ColorNone {
		t.Errorf("Expected stretched sprite to keep left half transparent, got %v", got)
	}
}

func TestAnimation(t *testing.T) {
	a := MustLoad("bird_up")
	b := MustLoad("bird_mid")
	c := MustLoad("bird_down")
	anim := NewAnimation(0.1, a, b, c)

	if anim.Frame() != a {
		t.Fatal("Expected first frame initially")
	}
	anim.Update(0.05)
	if anim.Index() != 0 {
		t.Errorf("Expected frame 0 after half a frame, got %d", anim.Index())
	}
	anim.Update(0.06)
	if anim.Index() != 1 {
		t.Errorf("Expected frame 1, got %d", anim.Index())
	}
	anim.Update(0.2)
	if anim.Index() != 0 {
		t.Errorf("Expected wrap to frame 0, got %d", anim.Index())
	}

	copied := anim
	copied.Update(0.1)
	if copied.Index() == anim.Index() {
		t.Error("Expected copies to advance independently")
	}

	anim.Reset()
	if anim.Index() != 0 {
		t.Errorf("Expected Reset to rewind, got %d", anim.Index())
	}

	var empty Animation
	empty.Update(1)
	if empty.Frame() != nil {
		t.Error("Expected nil frame for empty animation")
	}
}
