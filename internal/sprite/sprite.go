// Package sprite loads the embedded bitmap assets and cycles animation frames.
//
// Assets are plain text: one character per pixel, '.' is transparent, and
// lines starting with '#' are comments. See paletteChars for the colour keys.
package sprite

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/tomz197/flappy/internal/draw"
)

//go:embed assets/*.txt
var assets embed.FS

// ErrUnknownSprite is returned by Load for a name with no asset.
var ErrUnknownSprite = errors.New("unknown sprite")

var paletteChars = map[byte]draw.Color{
	'.': draw.ColorNone,
	'Y': draw.ColorYellow,
	'O': draw.ColorOrange,
	'W': draw.ColorWhite,
	'K': draw.ColorBlack,
	'R': draw.ColorRed,
	'G': draw.ColorGreen,
	'D': draw.ColorDarkGreen,
	'L': draw.ColorLightGreen,
	'B': draw.ColorBrown,
	'S': draw.ColorSand,
	'A': draw.ColorGray,
}

// Sprite is an immutable bitmap.
type Sprite struct {
	Name   string
	Width  int
	Height int
	Pixels []draw.Color // Row-major, Width*Height
}

// Parse decodes a text bitmap. Rows shorter than the widest row are padded
// with transparent pixels.
func Parse(name string, data []byte) (*Sprite, error) {
	var rows []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sprite %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sprite %s: no pixel rows", name)
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	s := &Sprite{
		Name:   name,
		Width:  width,
		Height: len(rows),
		Pixels: make([]draw.Color, width*len(rows)),
	}
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			col, ok := paletteChars[r[x]]
			if !ok {
				return nil, fmt.Errorf("sprite %s: unknown colour %q at row %d col %d", name, r[x], y+1, x+1)
			}
			s.Pixels[y*width+x] = col
		}
	}
	return s, nil
}

// Load parses the embedded asset assets/<name>.txt.
func Load(name string) (*Sprite, error) {
	data, err := assets.ReadFile("assets/" + name + ".txt")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSprite, name)
	}
	return Parse(name, data)
}

// MustLoad is Load for package-level asset variables.
func MustLoad(name string) *Sprite {
	s, err := Load(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Draw renders the sprite with its top-left corner at logical (x, y).
func (s *Sprite) Draw(c *draw.Canvas, x, y float64) {
	c.DrawBitmap(x, y, s.Width, s.Height, s.Pixels)
}

// DrawStretched renders the sprite resampled horizontally to width logical units.
func (s *Sprite) DrawStretched(c *draw.Canvas, x, y, width float64) {
	cols := int(width)
	if cols <= 0 {
		return
	}
	for j := 0; j < s.Height; j++ {
		for i := 0; i < cols; i++ {
			src := i * s.Width / cols
			col := s.Pixels[j*s.Width+src]
			if col == draw.ColorNone {
				continue
			}
			c.FillRect(x+float64(i), y+float64(j), 1, 1, col)
		}
	}
}
