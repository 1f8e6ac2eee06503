package object

import (
	"math"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/physics"
	"github.com/tomz197/flappy/internal/sprite"
)

// Wing cycle: up, level, down, level.
var birdFrames = []*sprite.Sprite{
	sprite.MustLoad("bird_up"),
	sprite.MustLoad("bird_mid"),
	sprite.MustLoad("bird_down"),
	sprite.MustLoad("bird_mid"),
}

// Bird is the player-controlled sprite. X is fixed; the world scrolls past it.
type Bird struct {
	X, Y          float64 // Top-left corner
	VY            float64 // Vertical velocity, downward positive
	Width, Height float64

	Gravity      float64
	FlapImpulse  float64
	MaxFallSpeed float64
	HitboxInset  float64

	HoverAmplitude float64
	HoverHz        float64
	hoverTime      float64
	hoverBaseY     float64

	Anim    sprite.Animation
	Crashed bool    // Wings stop and the bird only falls
	Blink   float64 // Seconds of crash flicker left
}

const birdBlinkHz = 12.0

// NewBird creates a bird with its top-left corner at (x, y).
func NewBird(x, y float64, t config.Tuning) *Bird {
	w, h := BirdSize()
	return &Bird{
		X:              x,
		Y:              y,
		Width:          w,
		Height:         h,
		Gravity:        t.Physics.Gravity,
		FlapImpulse:    t.Physics.FlapImpulse,
		MaxFallSpeed:   t.Physics.MaxFallSpeed,
		HitboxInset:    t.Bird.HitboxInset,
		HoverAmplitude: t.Bird.HoverAmplitude,
		HoverHz:        t.Bird.HoverHz,
		hoverBaseY:     y,
		Anim:           sprite.NewAnimation(t.Bird.FrameSeconds, birdFrames...),
	}
}

// BirdSize returns the sprite dimensions shared by every bird.
func BirdSize() (width, height float64) {
	return float64(birdFrames[0].Width), float64(birdFrames[0].Height)
}

// Flap replaces the vertical velocity with the upward impulse.
func (b *Bird) Flap() {
	if b.Crashed {
		return
	}
	b.VY = -b.FlapImpulse
}

// Hover bobs the bird around its start height while waiting for the first flap.
func (b *Bird) Hover(dt float64) {
	b.hoverTime += dt
	b.Y = b.hoverBaseY + math.Sin(b.hoverTime*b.HoverHz*2*math.Pi)*b.HoverAmplitude
	b.VY = 0
	b.Anim.Update(dt)
}

// Update applies flaps, gravity and animation.
func (b *Bird) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()

	if ctx.Flaps > 0 {
		b.Flap()
	}
	b.VY = physics.ApplyGravity(b.VY, b.Gravity, b.MaxFallSpeed, dt)
	b.Y += b.VY * dt

	if !b.Crashed {
		b.Anim.Update(dt)
	}
	return false, nil
}

// TickBlink counts down the crash flicker.
func (b *Bird) TickBlink(dt float64) {
	b.Blink = max(0, b.Blink-dt)
}

// Rect returns the sprite bounds.
func (b *Bird) Rect() physics.Rect {
	return physics.Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height}
}

// Hitbox returns the collision bounds: the sprite inset on every side.
func (b *Bird) Hitbox() physics.Rect {
	return b.Rect().Inset(b.HitboxInset)
}

// Draw renders the current animation frame.
func (b *Bird) Draw(ctx DrawContext) error {
	frame := b.Anim.Frame()
	if frame == nil || !ShouldRenderBlink(b.Blink, birdBlinkHz) {
		return nil
	}
	frame.Draw(ctx.Canvas, math.Round(b.X), math.Round(b.Y))
	return nil
}

// Snapshot returns an independent copy.
func (b *Bird) Snapshot() Object {
	c := *b
	return &c
}
