package compose

import (
	"fmt"
	"math/rand"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

const velocityJitter = 10

// Tile repeats a seed of seedMeasures across targetMeasures. Copy i is
// shifted by i*seedMeasures measures and every copied note gets its
// velocity jittered by up to +/-10, clamped to [0, 127].
func Tile(rng *rand.Rand, seed []models.Event, seedMeasures, targetMeasures int, ts models.TimeSignature) ([]models.Event, error) {
	if seedMeasures <= 0 || targetMeasures <= 0 {
		return nil, fmt.Errorf("%w: tiling needs positive lengths (seed %d, target %d)",
			apperrors.ErrInvalidForm, seedMeasures, targetMeasures)
	}
	if targetMeasures%seedMeasures != 0 {
		return nil, fmt.Errorf("%w: target %d measures is not a multiple of seed %d",
			apperrors.ErrInvalidForm, targetMeasures, seedMeasures)
	}

	copies := targetMeasures / seedMeasures
	stride := models.Ticks(seedMeasures) * ts.MeasureTicks()
	out := make([]models.Event, 0, len(seed)*copies)
	for i := 0; i < copies; i++ {
		for _, e := range seed {
			e.Onset += models.Ticks(i) * stride
			if !e.Rest {
				e.Velocity = clampVelocity(e.Velocity + rng.Intn(2*velocityJitter+1) - velocityJitter)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// BuildupConfig shapes a buildup: one subdivision count per measure
type BuildupConfig struct {
	Subdivisions []int
	NoteDuration models.Ticks
	BaseVelocity int
	Increment    int
	Accent       int
}

// DefaultBuildup doubles density every measure over four measures
var DefaultBuildup = BuildupConfig{
	Subdivisions: []int{2, 4, 8, 16},
	NoteDuration: sixteenth,
	BaseVelocity: 64,
	Increment:    16,
	Accent:       12,
}

// Measures is the length of the buildup
func (c BuildupConfig) Measures() int {
	return len(c.Subdivisions)
}

// Buildup synthesizes evenly spaced hits on pitch. Velocity rises by
// Increment each measure and the first hit of each measure is accented.
// Gaps between hits are rests, so the section fills its measures exactly.
func Buildup(cfg BuildupConfig, pitch int, ts models.TimeSignature) models.Section {
	section := models.Section{Type: models.SectionBuildup, Measures: cfg.Measures()}
	measureTicks := ts.MeasureTicks()

	for m, n := range cfg.Subdivisions {
		if n <= 0 {
			n = 1
		}
		start := models.Ticks(m) * measureTicks
		velocity := cfg.BaseVelocity + m*cfg.Increment

		for i := 0; i < n; i++ {
			onset := start + measureTicks*models.Ticks(i)/models.Ticks(n)
			next := start + measureTicks*models.Ticks(i+1)/models.Ticks(n)
			slot := next - onset

			d := cfg.NoteDuration
			if d <= 0 || d > slot {
				d = slot
			}

			e := models.Event{Onset: onset, Duration: d, Pitch: pitch, Velocity: clampVelocity(velocity)}
			if i == 0 {
				e.Velocity = clampVelocity(velocity + cfg.Accent)
				e.Articulation = models.ArticulationAccent
			}
			section.Events = append(section.Events, e)
			if slot > d {
				section.Events = append(section.Events, models.NewRest(onset+d, slot-d))
			}
		}
	}
	return section
}
