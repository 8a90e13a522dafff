package compose

import (
	"math/rand"

	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
)

// PhraseGenerator fills measures with scale-constrained notes. All
// randomness comes from Rand.
type PhraseGenerator struct {
	Scale         theory.Scale
	TimeSignature models.TimeSignature
	Rand          *rand.Rand
}

// NewPhraseGenerator creates a phrase generator
func NewPhraseGenerator(scale theory.Scale, ts models.TimeSignature, rng *rand.Rand) *PhraseGenerator {
	return &PhraseGenerator{Scale: scale, TimeSignature: ts, Rand: rng}
}

// Generate builds a section of the given length. The events exactly fill
// measures * beats-per-measure: a draw that overruns the bar is clamped to
// what is left of it.
func (g *PhraseGenerator) Generate(st Strategy, measures int) models.Section {
	section := models.Section{Type: st.Section, Measures: measures}
	if measures <= 0 || len(st.Rhythm.Durations) == 0 {
		return section
	}

	measureTicks := g.TimeSignature.MeasureTicks()
	var onset models.Ticks
	for m := 0; m < measures; m++ {
		remaining := measureTicks
		for remaining > 0 {
			d := st.Rhythm.Durations[g.Rand.Intn(len(st.Rhythm.Durations))]
			if d > remaining {
				d = remaining
			}

			if st.Rhythm.RestProbability > 0 && g.Rand.Float64() < st.Rhythm.RestProbability {
				section.Events = append(section.Events, models.NewRest(onset, d))
			} else {
				articulation, dynamic := st.Articulation.tag(d)
				section.Events = append(section.Events, models.Event{
					Onset:        onset,
					Duration:     d,
					Pitch:        g.pickPitch(st.Pitch),
					Velocity:     g.pickVelocity(st.Velocity),
					Articulation: articulation,
					Dynamic:      dynamic,
				})
			}

			onset += d
			remaining -= d
		}
	}
	return section
}

func (g *PhraseGenerator) pickPitch(p PitchPolicy) int {
	var degree int
	if len(p.Primary) > 0 && g.Rand.Float64() < p.PrimaryWeight {
		degree = p.Primary[g.Rand.Intn(len(p.Primary))]
	} else {
		degree = g.Rand.Intn(len(g.Scale.Pitches)) + 1
	}
	return g.Scale.Pitches[degree-1] + 12*p.OctaveShift
}

func (g *PhraseGenerator) pickVelocity(p VelocityPolicy) int {
	v := p.Base
	if p.Spread > 0 {
		v += g.Rand.Intn(2*p.Spread+1) - p.Spread
	}
	if v < 1 {
		v = 1
	}
	return clampVelocity(v)
}
