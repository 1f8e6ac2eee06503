package world

// collide checks the bird's hitbox against the ceiling, the ground and every
// pipe. In the ceiling-safe mode the bird is clamped under the top edge instead.
func (w *World) collide() Cause {
	hb := w.bird.Hitbox()

	if hb.Y < 0 {
		if w.tuning.Ground.CeilingKills {
			return CauseCeiling
		}
		w.bird.Y -= hb.Y
		if w.bird.VY < 0 {
			w.bird.VY = 0
		}
		hb = w.bird.Hitbox()
	}

	if hb.Bottom() >= w.floorY {
		return CauseGround
	}

	for _, p := range w.course.Pipes {
		if p.Collides(hb) {
			return CausePipe
		}
	}
	return CauseNone
}

// scorePasses marks pipes whose right edge is now strictly left of the bird
// and returns how many were newly passed.
func (w *World) scorePasses() int {
	n := 0
	for _, p := range w.course.Pipes {
		if !p.Passed && p.Right() < w.bird.X {
			p.Passed = true
			n++
		}
	}
	return n
}
