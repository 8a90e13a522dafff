package compose

import (
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

// PitchPolicy draws from Primary degrees with probability PrimaryWeight,
// otherwise uniformly from the whole scale.
type PitchPolicy struct {
	Primary       []int
	PrimaryWeight float64
	// OctaveShift moves every chosen pitch by whole octaves
	OctaveShift int
}

// RhythmPolicy is a catalog of durations drawn uniformly. Repeat an entry
// to weight it.
type RhythmPolicy struct {
	Durations []models.Ticks
	// RestProbability is the chance any drawn slot becomes a rest. Only the
	// EDM groove leaves gaps; theme and contrast sound every slot.
	RestProbability float64
}

// ArticulationPolicy tags notes from their duration. Zero thresholds disable a tag.
type ArticulationPolicy struct {
	CrescendoAtLeast models.Ticks
	StaccatoAtMost   models.Ticks
}

// VelocityPolicy draws velocities uniformly in [Base-Spread, Base+Spread]
type VelocityPolicy struct {
	Base   int
	Spread int
}

// Strategy is everything that distinguishes one kind of section from another
type Strategy struct {
	Name         string
	Section      models.SectionType
	Pitch        PitchPolicy
	Rhythm       RhythmPolicy
	Articulation ArticulationPolicy
	Velocity     VelocityPolicy
}

const primaryWeight = 0.7

// beat fractions
const (
	sixteenth     = models.TicksPerBeat / 4
	eighth        = models.TicksPerBeat / 2
	quarter       = models.TicksPerBeat
	dottedQuarter = models.TicksPerBeat * 3 / 2
	half          = models.TicksPerBeat * 2
)

// ThemeStrategy is the stable A section: tonic triad degrees, longer values,
// crescendo on held notes.
var ThemeStrategy = Strategy{
	Name:    "theme",
	Section: models.SectionA,
	Pitch: PitchPolicy{
		Primary:       []int{1, 3, 5},
		PrimaryWeight: primaryWeight,
	},
	Rhythm: RhythmPolicy{
		Durations: []models.Ticks{eighth, quarter, quarter, dottedQuarter, half},
	},
	Articulation: ArticulationPolicy{CrescendoAtLeast: half},
	Velocity:     VelocityPolicy{Base: 72, Spread: 8},
}

// ContrastStrategy is the tense B section: non-tonic degrees, shorter
// values, staccato on short notes.
var ContrastStrategy = Strategy{
	Name:    "contrast",
	Section: models.SectionB,
	Pitch: PitchPolicy{
		Primary:       []int{2, 4, 6, 7},
		PrimaryWeight: primaryWeight,
	},
	Rhythm: RhythmPolicy{
		Durations: []models.Ticks{sixteenth, eighth, eighth, quarter, quarter},
	},
	Articulation: ArticulationPolicy{StaccatoAtMost: eighth},
	Velocity:     VelocityPolicy{Base: 84, Spread: 10},
}

// GrooveStrategy is the EDM hook: driving eighths and sixteenths around the
// tonic, loud and clipped.
var GrooveStrategy = Strategy{
	Name:    "groove",
	Section: models.SectionGroove,
	Pitch: PitchPolicy{
		Primary:       []int{1, 5, 3},
		PrimaryWeight: primaryWeight,
	},
	Rhythm: RhythmPolicy{
		Durations:       []models.Ticks{sixteenth, eighth, eighth, eighth, quarter},
		RestProbability: 0.1,
	},
	Articulation: ArticulationPolicy{StaccatoAtMost: eighth},
	Velocity:     VelocityPolicy{Base: 104, Spread: 20},
}

// StrategyFor returns the configured strategy for a section type
func StrategyFor(t models.SectionType) (Strategy, bool) {
	switch t {
	case models.SectionA:
		return ThemeStrategy, true
	case models.SectionB:
		return ContrastStrategy, true
	case models.SectionGroove:
		return GrooveStrategy, true
	default:
		return Strategy{}, false
	}
}

func (p ArticulationPolicy) tag(d models.Ticks) (models.Articulation, models.Dynamic) {
	articulation := models.ArticulationNone
	dynamic := models.DynamicNone
	if p.StaccatoAtMost > 0 && d <= p.StaccatoAtMost {
		articulation = models.ArticulationStaccato
	}
	if p.CrescendoAtLeast > 0 && d >= p.CrescendoAtLeast {
		dynamic = models.DynamicCrescendo
	}
	return articulation, dynamic
}

func clampVelocity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
