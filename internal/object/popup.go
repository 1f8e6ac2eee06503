package object

import (
	"math"

	"github.com/tomz197/flappy/internal/draw"
)

// popupRiseSpeed is how fast popups float upward (units per second).
const popupRiseSpeed = 12.0

// Popup is a short-lived text label, such as "+1" when a pipe is passed.
// X and Y are playfield coordinates.
type Popup struct {
	X, Y     float64
	Value    string
	Lifetime float64 // Seconds remaining
}

// NewPopup creates a popup that lives for lifetime seconds.
func NewPopup(x, y float64, value string, lifetime float64) *Popup {
	return &Popup{X: x, Y: y, Value: value, Lifetime: lifetime}
}

// Update floats the popup upward until it expires.
func (p *Popup) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}
	p.Y -= popupRiseSpeed * dt
	return false, nil
}

// Draw is a no-op; popups are drawn as text after the canvas.
func (p *Popup) Draw(_ DrawContext) error {
	return nil
}

// DrawText writes the label over the canvas and marks the cells for repaint.
func (p *Popup) DrawText(ctx DrawContext) error {
	if p.Value == "" || ctx.Writer == nil || p.Y < 0 {
		return nil
	}
	col, row := ctx.Canvas.LogicalToTerminal(math.Round(p.X), math.Round(p.Y))
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	ctx.Writer.WriteStyledAt(col, row, draw.ColorBrightYellow+draw.ColorBold, p.Value)
	ctx.Canvas.MarkTextDirty(col, row, len(p.Value))
	return nil
}

// Snapshot returns an independent copy.
func (p *Popup) Snapshot() Object {
	c := *p
	return &c
}
