// Package world holds the simulation of a single game: bird physics, the
// pipe course, collision, scoring and the ready/playing/crashed phases.
package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/object"
)

// MaxStep caps a single Step so a stalled caller cannot tunnel the bird through a pipe.
const MaxStep = 100 * time.Millisecond

const (
	featherCount    = 12
	featherSpeed    = 18.0
	featherLifetime = 0.9
	popupLifetime   = 0.6
	crashBlink      = 0.5
)

// World is one player's game. It is not safe for concurrent use.
type World struct {
	tuning config.Tuning
	screen object.Screen
	rng    *rand.Rand
	floorY float64

	phase   Phase
	score   int
	elapsed time.Duration // Time spent in the current game, Ready excluded
	cause   Cause

	bird    *object.Bird
	course  *object.Course
	ground  *object.Ground
	effects []object.Object // Feathers and popups
	pending []object.Object // Spawned during the current Step
}

// CheckTuning validates t for a screen, including the limits that depend on
// the bird sprite: the hitbox must keep some area and the bird must be on screen.
func CheckTuning(t config.Tuning, screen object.Screen) error {
	if err := t.Validate(float64(screen.Height)); err != nil {
		return err
	}
	bw, bh := object.BirdSize()
	if 2*t.Bird.HitboxInset >= min(bw, bh) {
		return fmt.Errorf("%w: hitbox_inset %.1f leaves no hitbox on a %.0fx%.0f bird",
			config.ErrInvalidTuning, t.Bird.HitboxInset, bw, bh)
	}
	if t.Bird.X > float64(screen.Width)-bw {
		return fmt.Errorf("%w: bird x %.0f is off a %d wide screen",
			config.ErrInvalidTuning, t.Bird.X, screen.Width)
	}
	return nil
}

// New creates a world in the Ready phase. The tuning must fit the screen.
func New(t config.Tuning, screen object.Screen, seed int64) (*World, error) {
	if err := CheckTuning(t, screen); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	w := &World{
		tuning: t,
		screen: screen,
		rng:    rand.New(rand.NewSource(seed)),
		floorY: float64(screen.Height) - t.Ground.Height,
	}
	w.ground = object.NewGround(screen, t.Ground.Height, t.Ground.TileWidth)
	w.Reset()
	return w, nil
}

// Reset starts a new game: score 0, a fresh course, the bird back at its start.
// The ground keeps its scroll offset.
func (w *World) Reset() {
	for _, obj := range w.effects {
		object.ReleaseObject(obj)
	}
	w.effects = w.effects[:0]
	w.pending = w.pending[:0]

	w.phase = PhaseReady
	w.score = 0
	w.elapsed = 0
	w.cause = CauseNone

	_, h := object.BirdSize()
	w.bird = object.NewBird(w.tuning.Bird.X, (w.floorY-h)/2, w.tuning)
	w.course = object.NewCourse(w.tuning, w.screen, w.floorY, w.rng)
}

// Spawn implements object.Spawner. Spawned objects join the world after the current Step.
func (w *World) Spawn(obj object.Object) {
	w.pending = append(w.pending, obj)
}

// Step advances the world by dt. flaps is the number of flap presses since
// the previous Step; any number greater than zero is a single impulse.
func (w *World) Step(dt time.Duration, flaps int) []Event {
	if dt < 0 {
		dt = 0
	}
	if dt > MaxStep {
		dt = MaxStep
	}

	var events []Event
	ctx := object.UpdateContext{
		Delta:   dt,
		Speed:   w.Speed(),
		Screen:  w.screen,
		Spawner: w,
		Rand:    w.rng,
	}

	switch w.phase {
	case PhaseReady:
		if flaps > 0 {
			w.phase = PhasePlaying
			events = w.stepPlaying(ctx, flaps, events)
			break
		}
		w.bird.Hover(dt.Seconds())
		w.ground.Update(ctx)

	case PhasePlaying:
		events = w.stepPlaying(ctx, flaps, events)

	case PhaseCrashed:
		w.stepCrashed(ctx)
	}

	w.updateEffects(ctx)
	return events
}

func (w *World) stepPlaying(ctx object.UpdateContext, flaps int, events []Event) []Event {
	w.elapsed += ctx.Delta
	if flaps > 0 {
		ctx.Flaps = 1
		events = append(events, Event{Kind: EventFlap, Score: w.score})
	}

	w.bird.Update(ctx)
	w.course.Update(ctx)
	w.ground.Update(ctx)

	if cause := w.collide(); cause != CauseNone {
		return append(events, w.crash(cause))
	}

	if passed := w.scorePasses(); passed > 0 {
		for i := 0; i < passed; i++ {
			w.score++
			events = append(events, Event{Kind: EventScored, Score: w.score})
		}
		w.course.SetLevel(w.tuning.Difficulty.Level(w.score))
		b := w.bird.Rect()
		w.Spawn(object.NewPopup(b.Right(), b.Y-2, fmt.Sprintf("+%d", passed), popupLifetime))
	}
	return events
}

// stepCrashed lets the bird fall to the floor. Nothing scrolls.
func (w *World) stepCrashed(ctx object.UpdateContext) {
	ctx.Speed = 0
	w.bird.TickBlink(ctx.Delta.Seconds())
	if w.bird.Rect().Bottom() >= w.floorY {
		return
	}
	w.bird.Update(ctx)
	w.restOnFloor()
}

func (w *World) crash(cause Cause) Event {
	w.phase = PhaseCrashed
	w.cause = cause
	w.bird.Crashed = true
	w.bird.Blink = crashBlink
	if cause == CauseGround {
		w.restOnFloor()
	}

	r := w.bird.Rect()
	object.SpawnFeathers(r.X+r.W/2, r.Y+r.H/2, featherCount, featherSpeed, featherLifetime, w.rng, w)
	return Event{Kind: EventCrashed, Score: w.score, Cause: cause}
}

func (w *World) restOnFloor() {
	if w.bird.Rect().Bottom() > w.floorY {
		w.bird.Y = w.floorY - w.bird.Height
		w.bird.VY = 0
	}
}

func (w *World) updateEffects(ctx object.UpdateContext) {
	w.effects = append(w.effects, w.pending...)
	w.pending = w.pending[:0]

	kept := w.effects[:0]
	for _, obj := range w.effects {
		remove, err := obj.Update(ctx)
		if remove || err != nil {
			object.ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	for i := len(kept); i < len(w.effects); i++ {
		w.effects[i] = nil
	}
	w.effects = kept
}

// Phase returns the current phase.
func (w *World) Phase() Phase { return w.phase }

// Score returns the number of pipes passed in the current game.
func (w *World) Score() int { return w.score }

// Cause returns what ended the game, or CauseNone.
func (w *World) Cause() Cause { return w.cause }

// Elapsed returns the time spent playing the current game.
func (w *World) Elapsed() time.Duration { return w.elapsed }

// Level returns the current difficulty level in [0, 1].
func (w *World) Level() float64 { return w.course.Level() }

// Speed returns the current scroll speed. Zero once crashed.
func (w *World) Speed() float64 {
	if w.phase == PhaseCrashed {
		return 0
	}
	return w.tuning.ScrollSpeed(w.course.Level())
}

// FloorY returns the y coordinate of the ground's top edge.
func (w *World) FloorY() float64 { return w.floorY }

// Screen returns the playfield bounds.
func (w *World) Screen() object.Screen { return w.screen }

// Bird returns the live bird.
func (w *World) Bird() *object.Bird { return w.bird }

// Pipes returns the live pipes.
func (w *World) Pipes() []*object.Pipe { return w.course.Pipes }

// Drawables returns independent copies of every object in draw order,
// reusing dst's storage.
func (w *World) Drawables(dst []object.Object) []object.Object {
	live := make([]object.Object, 0, 3+len(w.effects))
	live = append(live, w.course, w.ground, w.bird)
	live = append(live, w.effects...)
	return object.SnapshotObjects(dst, live)
}
