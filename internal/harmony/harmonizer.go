package harmony

import (
	"fmt"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
)

// Role is how a voice is derived from the melody
type Role string

const (
	RoleThird           Role = "third"
	RoleFifth           Role = "fifth"
	RoleOctaveBelow     Role = "octave_below"
	RoleTwoOctavesBelow Role = "two_octaves_below"
)

// interval returns how far below the melody the role's candidate lies
func (r Role) interval(q theory.Quality) (int, error) {
	chord := q.Intervals()
	switch r {
	case RoleThird:
		return chord[1], nil
	case RoleFifth:
		return chord[2], nil
	case RoleOctaveBelow:
		return octave, nil
	case RoleTwoOctavesBelow:
		return 2 * octave, nil
	default:
		return 0, fmt.Errorf("unknown voice role %q", r)
	}
}

// Voice describes one accompanying part
type Voice struct {
	Name       string
	Instrument string
	Program    int
	Role       Role
	Min        int
	Max        int
}

// Validate checks the voice range. A range narrower than an octave cannot
// always hold an octave-clamped pitch, so it is rejected too.
func (v Voice) Validate() error {
	if v.Min >= v.Max {
		return fmt.Errorf("%w: %s has min %d >= max %d", apperrors.ErrInvalidRange, v.Name, v.Min, v.Max)
	}
	if v.Max-v.Min < octave-1 {
		return fmt.Errorf("%w: %s range %d-%d spans less than an octave", apperrors.ErrInvalidRange, v.Name, v.Min, v.Max)
	}
	if v.Min < 0 || v.Max > 127 {
		return fmt.Errorf("%w: %s range %d-%d is outside MIDI 0-127", apperrors.ErrInvalidRange, v.Name, v.Min, v.Max)
	}
	if _, err := v.Role.interval(theory.QualityMajor); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidRange, v.Name, err)
	}
	return nil
}

// Harmonizer derives accompanying parts from a melody. It holds no state
// between calls.
type Harmonizer struct {
	Scale theory.Scale
}

// NewHarmonizer creates a harmonizer for a scale
func NewHarmonizer(scale theory.Scale) *Harmonizer {
	return &Harmonizer{Scale: scale}
}

// Harmonize returns one part per voice, each aligned event for event with
// the melody. Melody rests are copied as rests.
func (h *Harmonizer) Harmonize(melody []models.Event, voices []Voice) ([]models.Part, error) {
	if len(melody) == 0 {
		return nil, apperrors.ErrEmptyMelody
	}
	for _, v := range voices {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	parts := make([]models.Part, len(voices))
	prev := make([]int, len(voices))
	hasPrev := make([]bool, len(voices))
	for i, v := range voices {
		parts[i] = models.Part{
			Name:       v.Name,
			Instrument: v.Instrument,
			Program:    v.Program,
			Min:        v.Min,
			Max:        v.Max,
			Events:     make([]models.Event, 0, len(melody)),
		}
	}

	for _, e := range melody {
		if e.Rest {
			for i := range parts {
				parts[i].Events = append(parts[i].Events, models.NewRest(e.Onset, e.Duration))
			}
			continue
		}

		quality := theory.QualityForDegree(h.Scale.Degree(e.Pitch))
		for i, v := range voices {
			interval, _ := v.Role.interval(quality)
			pitch := Place(e.Pitch-interval, v.Min, v.Max, prev[i], hasPrev[i])
			prev[i], hasPrev[i] = pitch, true

			parts[i].Events = append(parts[i].Events, models.Event{
				Onset:        e.Onset,
				Duration:     e.Duration,
				Pitch:        pitch,
				Velocity:     e.Velocity,
				Articulation: e.Articulation,
				Dynamic:      e.Dynamic,
			})
		}
	}
	return parts, nil
}
