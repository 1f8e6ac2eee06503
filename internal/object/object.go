// Package object defines the drawable, updatable entities of the game world.
package object

import (
	"math/rand"
	"time"

	"github.com/tomz197/flappy/internal/draw"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Flaps   int        // Flap presses since the previous update
	Speed   float64    // Current scroll speed (units per second)
	Screen  Screen     // Playfield bounds
	Spawner Spawner    // Receives effects spawned during update
	Rand    *rand.Rand // Per-world random source
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // High-resolution canvas (2x vertical)
	Writer *draw.ChunkWriter // Text output, written after the canvas is rendered
}

// Screen represents the logical playfield dimensions.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen builds a Screen with its centre precomputed.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2}
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object onto ctx.Canvas.
	Draw(ctx DrawContext) error
}

// Snapshotter is implemented by objects that can produce an independent copy
// for rendering on another goroutine.
type Snapshotter interface {
	Snapshot() Object
}

// TextDrawer is implemented by objects that also write text over the rendered canvas.
type TextDrawer interface {
	DrawText(ctx DrawContext) error
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// SnapshotObjects copies every object that supports it. Objects without
// Snapshot are shared as-is and must be immutable.
func SnapshotObjects(dst, objects []Object) []Object {
	dst = dst[:0]
	for _, obj := range objects {
		if s, ok := obj.(Snapshotter); ok {
			dst = append(dst, s.Snapshot())
			continue
		}
		dst = append(dst, obj)
	}
	return dst
}

// ShouldRenderBlink returns true if an object with remaining blink time
// should be rendered this frame. Always true once remainingTime <= 0.
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return true
	}
	phase := int(remainingTime * frequency)
	return phase%2 != 0
}
