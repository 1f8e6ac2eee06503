package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/flappy.yaml
var defaultTuningYAML []byte

// ErrInvalidTuning is wrapped by every validation failure.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning contains every gameplay parameter that can be overridden from YAML.
type Tuning struct {
	Physics    PhysicsTuning    `yaml:"physics"`
	Bird       BirdTuning       `yaml:"bird"`
	Obstacles  ObstacleTuning   `yaml:"obstacles"`
	Ground     GroundTuning     `yaml:"ground"`
	Difficulty DifficultyTuning `yaml:"difficulty"`
}

// PhysicsTuning defines motion parameters.
type PhysicsTuning struct {
	Gravity      float64 `yaml:"gravity"`
	FlapImpulse  float64 `yaml:"flap_impulse"`   // Upward speed set by a flap
	MaxFallSpeed float64 `yaml:"max_fall_speed"` // Terminal velocity
	ScrollSpeed  float64 `yaml:"scroll_speed"`   // Base leftward speed of pipes and ground
}

// BirdTuning defines the bird's placement and animation.
type BirdTuning struct {
	X              float64 `yaml:"x"`
	HitboxInset    float64 `yaml:"hitbox_inset"`
	FrameSeconds   float64 `yaml:"frame_seconds"`
	HoverAmplitude float64 `yaml:"hover_amplitude"`
	HoverHz        float64 `yaml:"hover_hz"`
}

// ObstacleTuning defines pipe geometry and the rolling window size.
type ObstacleTuning struct {
	PipeCount       int     `yaml:"pipe_count"`
	PipeWidth       float64 `yaml:"pipe_width"`
	PipeSpacing     float64 `yaml:"pipe_spacing"`
	FirstPipeOffset float64 `yaml:"first_pipe_offset"` // Distance past the right edge for the first pipe
	GapSize         float64 `yaml:"gap_size"`
	MinGapSize      float64 `yaml:"min_gap_size"`
	TopMargin       float64 `yaml:"top_margin"`
	BottomMargin    float64 `yaml:"bottom_margin"`
}

// GroundTuning defines the scrolling floor.
type GroundTuning struct {
	Height       float64 `yaml:"height"`
	TileWidth    float64 `yaml:"tile_width"`
	CeilingKills bool    `yaml:"ceiling_kills"`
}

// DifficultyTuning defines how the game hardens as the score rises.
type DifficultyTuning struct {
	Enabled          bool    `yaml:"enabled"`
	InitialLevel     float64 `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	MaxAt            int     `yaml:"max_at"`        // Score at which the maximum level is reached
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`
	GapReduction     float64 `yaml:"gap_reduction"`
	SpacingReduction float64 `yaml:"spacing_reduction"`
}

// DefaultTuning returns the built-in tuning.
// Must stay in sync with defaults/flappy.yaml.
func DefaultTuning() Tuning {
	return Tuning{
		Physics: PhysicsTuning{
			Gravity:      150,
			FlapImpulse:  44,
			MaxFallSpeed: 70,
			ScrollSpeed:  30,
		},
		Bird: BirdTuning{
			X:              28,
			HitboxInset:    1,
			FrameSeconds:   0.09,
			HoverAmplitude: 2,
			HoverHz:        1.5,
		},
		Obstacles: ObstacleTuning{
			PipeCount:       2,
			PipeWidth:       10,
			PipeSpacing:     68,
			FirstPipeOffset: 30,
			GapSize:         26,
			MinGapSize:      18,
			TopMargin:       6,
			BottomMargin:    6,
		},
		Ground: GroundTuning{
			Height:       6,
			TileWidth:    8,
			CeilingKills: true,
		},
		Difficulty: DifficultyTuning{
			Enabled:          true,
			InitialLevel:     0,
			MaxAt:            40,
			SpeedMultiplier:  0.6,
			GapReduction:     6,
			SpacingReduction: 10,
		},
	}
}

// DefaultTuningYAML returns the embedded default YAML document.
func DefaultTuningYAML() []byte {
	return defaultTuningYAML
}

// ParseTuning decodes YAML over the defaults, so a document only needs
// the keys it changes.
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("decode tuning: %w", err)
	}
	return t, nil
}

// LoadTuning reads a tuning file. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return DefaultTuning(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning %s: %w", path, err)
	}
	t, err := ParseTuning(data)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks the tuning against a playfield of the given height.
func (t Tuning) Validate(viewHeight float64) error {
	p, o := t.Physics, t.Obstacles
	switch {
	case p.Gravity <= 0:
		return fmt.Errorf("%w: gravity must be positive", ErrInvalidTuning)
	case p.FlapImpulse <= 0:
		return fmt.Errorf("%w: flap_impulse must be positive", ErrInvalidTuning)
	case p.ScrollSpeed <= 0:
		return fmt.Errorf("%w: scroll_speed must be positive", ErrInvalidTuning)
	case o.PipeCount < 1:
		return fmt.Errorf("%w: pipe_count must be at least 1", ErrInvalidTuning)
	case o.PipeWidth <= 0:
		return fmt.Errorf("%w: pipe_width must be positive", ErrInvalidTuning)
	case o.PipeSpacing <= o.PipeWidth:
		return fmt.Errorf("%w: pipe_spacing must exceed pipe_width", ErrInvalidTuning)
	case o.MinGapSize <= 0 || o.GapSize < o.MinGapSize:
		return fmt.Errorf("%w: need 0 < min_gap_size <= gap_size", ErrInvalidTuning)
	case o.TopMargin < 0 || o.BottomMargin < 0:
		return fmt.Errorf("%w: margins must not be negative", ErrInvalidTuning)
	case t.Ground.Height < 0 || t.Ground.TileWidth <= 0:
		return fmt.Errorf("%w: ground height/tile_width out of range", ErrInvalidTuning)
	case t.Bird.X < 0:
		return fmt.Errorf("%w: bird x must not be negative", ErrInvalidTuning)
	case t.Bird.HitboxInset < 0:
		return fmt.Errorf("%w: hitbox_inset must not be negative", ErrInvalidTuning)
	case t.Bird.HoverAmplitude < 0 || t.Bird.HoverHz < 0:
		return fmt.Errorf("%w: hover_amplitude/hover_hz must not be negative", ErrInvalidTuning)
	case t.Bird.FrameSeconds <= 0:
		return fmt.Errorf("%w: frame_seconds must be positive", ErrInvalidTuning)
	case t.Difficulty.InitialLevel < 0 || t.Difficulty.InitialLevel > 1:
		return fmt.Errorf("%w: initial_level must be within [0, 1]", ErrInvalidTuning)
	case t.Difficulty.Enabled && t.Difficulty.MaxAt <= 0:
		return fmt.Errorf("%w: max_at must be positive when difficulty is enabled", ErrInvalidTuning)
	}

	floor := viewHeight - t.Ground.Height
	if o.TopMargin+o.GapSize+o.BottomMargin > floor {
		return fmt.Errorf("%w: gap and margins (%.0f) do not fit above the ground (%.0f)",
			ErrInvalidTuning, o.TopMargin+o.GapSize+o.BottomMargin, floor)
	}
	return nil
}

// Level returns the difficulty level in [0, 1] for a score.
func (d DifficultyTuning) Level(score int) float64 {
	if !d.Enabled || d.MaxAt <= 0 {
		return clamp01(d.InitialLevel)
	}
	return clamp01(d.InitialLevel + float64(score)/float64(d.MaxAt))
}

// ScrollSpeed returns the scroll speed at a difficulty level.
func (t Tuning) ScrollSpeed(level float64) float64 {
	return t.Physics.ScrollSpeed * (1 + level*t.Difficulty.SpeedMultiplier)
}

// GapSize returns the pipe gap at a difficulty level, never below MinGapSize.
func (t Tuning) GapSize(level float64) float64 {
	return math.Max(t.Obstacles.GapSize-level*t.Difficulty.GapReduction, t.Obstacles.MinGapSize)
}

// PipeSpacing returns the horizontal distance between pipes at a difficulty level.
func (t Tuning) PipeSpacing(level float64) float64 {
	return math.Max(t.Obstacles.PipeSpacing-level*t.Difficulty.SpacingReduction, t.Obstacles.PipeWidth*2)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
