package object

import (
	"math"

	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/physics"
)

// Ground is the scrolling floor strip at the bottom of the playfield.
type Ground struct {
	Y         float64 // Top edge; the bird crashes when its hitbox reaches it
	Width     float64
	Height    float64
	TileWidth float64
	Offset    float64 // Scroll offset within one tile, in [0, TileWidth)
}

// NewGround places a ground strip of the given height at the bottom of screen.
func NewGround(screen Screen, height, tileWidth float64) *Ground {
	if tileWidth <= 0 {
		tileWidth = 1
	}
	return &Ground{
		Y:         float64(screen.Height) - height,
		Width:     float64(screen.Width),
		Height:    height,
		TileWidth: tileWidth,
	}
}

// Rect returns the ground's bounds.
func (g *Ground) Rect() physics.Rect {
	return physics.Rect{X: 0, Y: g.Y, W: g.Width, H: g.Height}
}

// Update advances the scroll offset.
func (g *Ground) Update(ctx UpdateContext) (bool, error) {
	g.Offset = math.Mod(g.Offset+ctx.Speed*ctx.Delta.Seconds(), g.TileWidth)
	if g.Offset < 0 {
		g.Offset += g.TileWidth
	}
	return false, nil
}

// Draw renders a grass edge over sand with diagonal stripes.
func (g *Ground) Draw(ctx DrawContext) error {
	ctx.Canvas.FillRect(0, g.Y, g.Width, g.Height, draw.ColorSand)
	ctx.Canvas.FillRect(0, g.Y, g.Width, 1, draw.ColorLightGreen)
	if g.Height > 1 {
		ctx.Canvas.FillRect(0, g.Y+1, g.Width, 1, draw.ColorDarkGreen)
	}

	bottom := g.Y + g.Height - 1
	for x := -g.Offset; x < g.Width+g.Height; x += g.TileWidth {
		ctx.Canvas.DrawLine(
			draw.Point{X: math.Round(x), Y: g.Y + 2},
			draw.Point{X: math.Round(x - g.Height + 2), Y: bottom},
			draw.ColorBrown,
		)
	}
	return nil
}

// Snapshot returns an independent copy.
func (g *Ground) Snapshot() Object {
	c := *g
	return &c
}
