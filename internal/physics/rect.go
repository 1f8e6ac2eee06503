// Package physics provides axis-aligned collision helpers and motion integration.
package physics

// Rect is an axis-aligned bounding box in logical world units.
// X, Y is the top-left corner; Y grows downward.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Overlaps reports whether two rectangles share interior area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains reports whether the point lies inside the rectangle (right/bottom exclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by d on every side. The result never has negative size.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyGravity integrates a vertical velocity under constant acceleration
// and caps it at maxFall (downward is positive).
func ApplyGravity(vy, gravity, maxFall, dt float64) float64 {
	vy += gravity * dt
	if maxFall > 0 && vy > maxFall {
		vy = maxFall
	}
	return vy
}
