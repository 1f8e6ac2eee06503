package object

import (
	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/physics"
	"github.com/tomz197/flappy/internal/sprite"
)

var pipeCap = sprite.MustLoad("pipe_cap")

// pipeCapOverhang is how far the cap extends past each side of the pipe body.
const pipeCapOverhang = 1.0

// Pipe is an obstacle pair: an upper and a lower rectangle separated by a gap.
type Pipe struct {
	X       float64 // Left edge
	Width   float64
	GapTop  float64 // Y of the upper rectangle's bottom edge
	GapSize float64
	FloorY  float64 // The lower rectangle extends down to here
	Passed  bool    // Already counted towards the score
}

// Right returns the x coordinate of the pipe's right edge.
func (p *Pipe) Right() float64 {
	return p.X + p.Width
}

// GapBottom returns the y coordinate of the lower rectangle's top edge.
func (p *Pipe) GapBottom() float64 {
	return p.GapTop + p.GapSize
}

// TopRect returns the upper rectangle.
func (p *Pipe) TopRect() physics.Rect {
	return physics.Rect{X: p.X, Y: 0, W: p.Width, H: p.GapTop}
}

// BottomRect returns the lower rectangle.
func (p *Pipe) BottomRect() physics.Rect {
	return physics.Rect{X: p.X, Y: p.GapBottom(), W: p.Width, H: p.FloorY - p.GapBottom()}
}

// OffScreen reports whether the pipe has fully left the playfield on the left.
func (p *Pipe) OffScreen() bool {
	return p.Right() <= 0
}

// Collides reports whether r overlaps either rectangle.
func (p *Pipe) Collides(r physics.Rect) bool {
	return p.TopRect().Overlaps(r) || p.BottomRect().Overlaps(r)
}

// Update scrolls the pipe left at the current speed.
func (p *Pipe) Update(ctx UpdateContext) (bool, error) {
	p.X -= ctx.Speed * ctx.Delta.Seconds()
	return false, nil
}

// Draw renders both rectangles with a shaded body and a cap at the gap.
func (p *Pipe) Draw(ctx DrawContext) error {
	for _, r := range [2]physics.Rect{p.TopRect(), p.BottomRect()} {
		if r.Empty() {
			continue
		}
		ctx.Canvas.FillRect(r.X, r.Y, r.W, r.H, draw.ColorGreen)
		ctx.Canvas.FillRect(r.X+1, r.Y, 1, r.H, draw.ColorLightGreen)
		ctx.Canvas.FillRect(r.Right()-1, r.Y, 1, r.H, draw.ColorDarkGreen)
	}

	capW := p.Width + 2*pipeCapOverhang
	capH := float64(pipeCap.Height)
	if p.GapTop >= capH {
		pipeCap.DrawStretched(ctx.Canvas, p.X-pipeCapOverhang, p.GapTop-capH, capW)
	}
	if p.FloorY-p.GapBottom() >= capH {
		pipeCap.DrawStretched(ctx.Canvas, p.X-pipeCapOverhang, p.GapBottom(), capW)
	}
	return nil
}

// Snapshot returns an independent copy.
func (p *Pipe) Snapshot() Object {
	c := *p
	return &c
}
