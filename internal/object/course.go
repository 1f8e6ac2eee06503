package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/flappy/internal/config"
)

// Course keeps a fixed window of pipes scrolling across the playfield.
// Pipes that leave on the left are recycled to the right with a new gap.
type Course struct {
	Pipes    []*Pipe
	Recycled int // Total recycles since creation

	tuning config.Tuning
	screen Screen
	floorY float64
	level  float64
	rng    *rand.Rand
}

// NewCourse lays out PipeCount pipes starting FirstPipeOffset past the right edge.
func NewCourse(t config.Tuning, screen Screen, floorY float64, rng *rand.Rand) *Course {
	c := &Course{
		tuning: t,
		screen: screen,
		floorY: floorY,
		level:  t.Difficulty.InitialLevel,
		rng:    rng,
	}

	x := float64(screen.Width) + t.Obstacles.FirstPipeOffset
	for i := 0; i < t.Obstacles.PipeCount; i++ {
		p := &Pipe{X: x, Width: t.Obstacles.PipeWidth, FloorY: floorY}
		c.regap(p)
		c.Pipes = append(c.Pipes, p)
		x += t.PipeSpacing(c.level)
	}
	return c
}

// SetLevel changes the difficulty level used for pipes placed from now on.
func (c *Course) SetLevel(level float64) {
	c.level = level
}

// Level returns the current difficulty level.
func (c *Course) Level() float64 {
	return c.level
}

// Update scrolls every pipe and recycles the ones that left the screen.
func (c *Course) Update(ctx UpdateContext) (bool, error) {
	for _, p := range c.Pipes {
		if _, err := p.Update(ctx); err != nil {
			return false, err
		}
	}
	for _, p := range c.Pipes {
		if p.OffScreen() {
			c.recycle(p)
		}
	}
	return false, nil
}

// Draw renders every pipe.
func (c *Course) Draw(ctx DrawContext) error {
	for _, p := range c.Pipes {
		if err := p.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy with independent pipes. The copy is for drawing only.
func (c *Course) Snapshot() Object {
	cp := &Course{
		Pipes:    make([]*Pipe, len(c.Pipes)),
		Recycled: c.Recycled,
		tuning:   c.tuning,
		screen:   c.screen,
		floorY:   c.floorY,
		level:    c.level,
	}
	for i, p := range c.Pipes {
		pc := *p
		cp.Pipes[i] = &pc
	}
	return cp
}

// recycle moves p one spacing behind the rightmost pipe, never closer than
// the right edge of the screen.
func (c *Course) recycle(p *Pipe) {
	rightmost := math.Inf(-1)
	for _, other := range c.Pipes {
		if other != p && other.X > rightmost {
			rightmost = other.X
		}
	}

	x := float64(c.screen.Width)
	if next := rightmost + c.tuning.PipeSpacing(c.level); next > x {
		x = next
	}

	p.X = x
	p.Width = c.tuning.Obstacles.PipeWidth
	p.Passed = false
	c.regap(p)
	c.Recycled++
}

// regap picks a new gap for p within the vertical margins.
func (c *Course) regap(p *Pipe) {
	gap := c.tuning.GapSize(c.level)
	lo := c.tuning.Obstacles.TopMargin
	hi := c.floorY - c.tuning.Obstacles.BottomMargin - gap
	top := lo
	if hi > lo {
		top = lo + c.rng.Float64()*(hi-lo)
	}
	p.GapTop = math.Round(top)
	p.GapSize = gap
	p.FloorY = c.floorY
}
