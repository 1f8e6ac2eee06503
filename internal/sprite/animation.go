package sprite

// Animation cycles through frames at a fixed rate.
// It is a value type: copies advance independently and share the immutable frames.
type Animation struct {
	Frames       []*Sprite
	FrameSeconds float64

	elapsed float64
	index   int
}

// NewAnimation creates an animation showing each frame for frameSeconds.
func NewAnimation(frameSeconds float64, frames ...*Sprite) Animation {
	return Animation{Frames: frames, FrameSeconds: frameSeconds}
}

// Update advances the animation by dt seconds, skipping frames on long steps.
func (a *Animation) Update(dt float64) {
	if len(a.Frames) < 2 || a.FrameSeconds <= 0 {
		return
	}
	a.elapsed += dt
	for a.elapsed >= a.FrameSeconds {
		a.elapsed -= a.FrameSeconds
		a.index = (a.index + 1) % len(a.Frames)
	}
}

// Reset rewinds to the first frame.
func (a *Animation) Reset() {
	a.elapsed = 0
	a.index = 0
}

// Index returns the current frame index.
func (a Animation) Index() int {
	return a.index
}

// Frame returns the current frame, or nil when there are none.
func (a Animation) Frame() *Sprite {
	if len(a.Frames) == 0 {
		return nil
	}
	return a.Frames[a.index]
}
