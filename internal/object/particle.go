package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/flappy/internal/draw"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

var featherColors = []draw.Color{draw.ColorYellow, draw.ColorOrange, draw.ColorWhite}

// Particle is a short-lived visual effect.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Gravity     float64 // Downward acceleration
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay (1.0 = no drag)
	Color       draw.Color
	Fade        bool // Whether to fade out over lifetime
	pooled      bool
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, color draw.Color) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X:           x,
		Y:           y,
		VX:          vx,
		VY:          vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.95,
		Color:       color,
		Fade:        true,
		pooled:      true,
	}
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	if !p.pooled {
		return
	}
	particlePool.Put(p)
}

// SpawnFeathers bursts count feathers out of (x, y). They drift down as they slow.
func SpawnFeathers(x, y float64, count int, speed, lifetime float64, rng *rand.Rand, spawner Spawner) {
	if spawner == nil || rng == nil {
		return
	}

	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		spd := speed * (0.5 + rng.Float64())
		life := lifetime * (0.5 + rng.Float64()*0.5)

		p := NewParticle(x, y, math.Cos(angle)*spd, math.Sin(angle)*spd, life,
			featherColors[rng.Intn(len(featherColors))])
		p.Gravity = 20
		p.Drag = 0.9
		spawner.Spawn(p)
	}
}

// Update moves the particle and checks lifetime.
func (p *Particle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()

	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}

	dragFactor := math.Pow(p.Drag, dt*60) // Normalize drag to ~60fps
	p.VX *= dragFactor
	p.VY = p.VY*dragFactor + p.Gravity*dt

	p.X += p.VX * dt
	p.Y += p.VY * dt

	if p.X < 0 || p.Y < 0 || p.X >= float64(ctx.Screen.Width) || p.Y >= float64(ctx.Screen.Height) {
		return true, nil
	}
	return false, nil
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(ctx DrawContext) error {
	// Skip faded particles (< 25% lifetime)
	if p.Fade && p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25 {
		return nil
	}
	ctx.Canvas.SetFloat(p.X, p.Y, p.Color)
	return nil
}

// Snapshot returns an unpooled copy.
func (p *Particle) Snapshot() Object {
	c := *p
	c.pooled = false
	return &c
}
