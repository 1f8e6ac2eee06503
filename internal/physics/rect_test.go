package physics

import "testing"

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 10, Y: 10, W: 10, H: 10}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"Identical", base, true},
		{"Inside", Rect{X: 12, Y: 12, W: 2, H: 2}, true},
		{"Partial overlap", Rect{X: 15, Y: 15, W: 10, H: 10}, true},
		{"Touching right edge", Rect{X: 20, Y: 10, W: 5, H: 5}, false},
		{"Touching bottom edge", Rect{X: 10, Y: 20, W: 5, H: 5}, false},
		{"Left of", Rect{X: 0, Y: 10, W: 5, H: 5}, false},
		{"Above", Rect{X: 10, Y: 0, W: 5, H: 5}, false},
		{"Zero width", Rect{X: 12, Y: 12, W: 0, H: 5}, false},
		{"Barely overlapping", Rect{X: 19.9, Y: 19.9, W: 1, H: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Expected Overlaps to be %v, got %v", tt.want, got)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Expected symmetric Overlaps to be %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 4, H: 2}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"Origin", 0, 0, true},
		{"Interior", 3.9, 1.9, true},
		{"Right edge", 4, 1, false},
		{"Bottom edge", 1, 2, false},
		{"Negative", -0.1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Expected Contains(%v, %v) to be %v, got %v", tt.x, tt.y, tt.want, got)
			}
		})
	}
}

func TestRectInset(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 8, H: 6}.Inset(1)
	if r.X != 1 || r.Y != 1 || r.W != 6 || r.H != 4 {
		t.Errorf("Unexpected inset rect: %+v", r)
	}

	collapsed := Rect{X: 0, Y: 0, W: 2, H: 2}.Inset(5)
	if !collapsed.Empty() {
		t.Errorf("Expected collapsed rect to be empty, got %+v", collapsed)
	}
}

func TestApplyGravity(t *testing.T) {
	vy := ApplyGravity(0, 100, 50, 0.1)
	if vy != 10 {
		t.Errorf("Expected vy to be 10, got %v", vy)
	}

	vy = ApplyGravity(45, 100, 50, 0.1)
	if vy != 50 {
		t.Errorf("Expected vy to be capped at 50, got %v", vy)
	}

	vy = ApplyGravity(-30, 100, 50, 0.1)
	if vy != -20 {
		t.Errorf("Expected upward vy to decay to -20, got %v", vy)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp returned a value outside the range")
	}
}
