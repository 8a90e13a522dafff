package harmony

import (
	"math/rand"
	"testing"

	"github.com/Conceptual-Machines/orchestra-api/internal/compose"
	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cMajor() theory.Scale {
	return theory.NewScale(theory.MustParseKey("C"))
}

func note(onset models.Ticks, pitch int) models.Event {
	return models.Event{Onset: onset, Duration: models.TicksPerBeat, Pitch: pitch, Velocity: 80}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name      string
		candidate int
		lo, hi    int
		prev      int
		hasPrev   bool
		want      int
	}{
		{"first note is only clamped", 20, 36, 76, 0, false, 44},
		{"clamped down", 90, 36, 76, 0, false, 78 - 12},
		{"small leap kept", 64, 36, 76, 60, true, 64},
		{"exactly a fifth kept", 67, 36, 76, 60, true, 67},
		{"exactly a fifth below kept", 53, 36, 76, 60, true, 53},
		{"minor sixth smoothed", 68, 36, 76, 60, true, 56},
		{"wide leap down smoothed", 64, 36, 76, 50, true, 52},
		{"wide leap up smoothed", 40, 36, 76, 62, true, 52},
		{"alternative out of range", 71, 60, 72, 60, true, 71},
		{"clamp then smooth", 30, 36, 76, 60, true, 54},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Place(tt.candidate, tt.lo, tt.hi, tt.prev, tt.hasPrev)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, tt.lo)
			assert.LessOrEqual(t, got, tt.hi)
		})
	}
}

func TestHarmonizeDominantDegreeUsesMajorTriad(t *testing.T) {
	h := NewHarmonizer(cMajor())
	parts, err := h.Harmonize([]models.Event{note(0, 67)}, StringQuartetPlusBass.Voices)
	require.NoError(t, err)
	require.Len(t, parts, 4)

	// G4 is degree 5: third and fifth come from [0,4,7]
	assert.Equal(t, 67-4, parts[0].Events[0].Pitch)
	assert.Equal(t, 67-7, parts[1].Events[0].Pitch)
	assert.Equal(t, 67-12, parts[2].Events[0].Pitch)
	assert.Equal(t, 67-24, parts[3].Events[0].Pitch)
}

func TestHarmonizeChordQualityByDegree(t *testing.T) {
	h := NewHarmonizer(cMajor())
	voices := []Voice{
		{Name: "third", Role: RoleThird, Min: 0, Max: 127},
		{Name: "fifth", Role: RoleFifth, Min: 0, Max: 127},
	}

	tests := []struct {
		name  string
		pitch int
		third int
		fifth int
	}{
		{"degree 1 major", 60, 4, 7},
		{"degree 2 minor", 62, 3, 7},
		{"degree 6 minor", 69, 3, 7},
		{"degree 7 diminished", 71, 3, 6},
		{"chromatic treated as degree 1", 61, 4, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := h.Harmonize([]models.Event{note(0, tt.pitch)}, voices)
			require.NoError(t, err)
			assert.Equal(t, tt.pitch-tt.third, parts[0].Events[0].Pitch)
			assert.Equal(t, tt.pitch-tt.fifth, parts[1].Events[0].Pitch)
		})
	}
}

func TestHarmonizeRestsPassThrough(t *testing.T) {
	h := NewHarmonizer(cMajor())
	melody := []models.Event{
		note(0, 60),
		models.NewRest(480, 960),
		note(1440, 64),
	}
	parts, err := h.Harmonize(melody, StringQuartetPlusBass.Voices)
	require.NoError(t, err)

	for _, p := range parts {
		require.Len(t, p.Events, 3)
		rest := p.Events[1]
		assert.True(t, rest.Rest)
		assert.Equal(t, models.Ticks(480), rest.Onset)
		assert.Equal(t, models.Ticks(960), rest.Duration)
		assert.Zero(t, rest.Pitch)
		assert.Zero(t, rest.Velocity)
	}
}

func TestHarmonizeErrors(t *testing.T) {
	h := NewHarmonizer(cMajor())

	_, err := h.Harmonize(nil, StringQuartetPlusBass.Voices)
	assert.ErrorIs(t, err, apperrors.ErrEmptyMelody)

	tests := []Voice{
		{Name: "inverted", Role: RoleThird, Min: 60, Max: 50},
		{Name: "equal", Role: RoleThird, Min: 60, Max: 60},
		{Name: "narrow", Role: RoleThird, Min: 60, Max: 65},
		{Name: "outside midi", Role: RoleThird, Min: 100, Max: 140},
		{Name: "unknown role", Role: Role("ninth"), Min: 36, Max: 76},
	}
	for _, v := range tests {
		t.Run(v.Name, func(t *testing.T) {
			_, err := h.Harmonize([]models.Event{note(0, 60)}, []Voice{v})
			assert.ErrorIs(t, err, apperrors.ErrInvalidRange)
		})
	}
}

// generatedMelodies yields melodies from the phrase generator across keys
func generatedMelodies(t *testing.T) map[string][]models.Event {
	t.Helper()
	out := map[string][]models.Event{}
	for _, key := range []string{"C", "G", "F#m", "Bbm", "Eb"} {
		scale := theory.NewScale(theory.MustParseKey(key))
		for seed := int64(1); seed <= 5; seed++ {
			a := compose.NewAssembler(scale, models.CommonTime, rand.New(rand.NewSource(seed)))
			arr, err := a.Assemble(t.Context(), compose.FormABA, 6)
			require.NoError(t, err)
			out[key+"/"+string(rune('0'+seed))] = arr.Melody
		}
	}
	return out
}

func TestHarmonizeProperties(t *testing.T) {
	for name, melody := range generatedMelodies(t) {
		t.Run(name, func(t *testing.T) {
			scale := theory.NewScale(theory.MustParseKey(name[:len(name)-2]))
			h := NewHarmonizer(scale)
			voices := StringQuartetPlusBass.Voices

			parts, err := h.Harmonize(melody, voices)
			require.NoError(t, err)

			again, err := h.Harmonize(melody, voices)
			require.NoError(t, err)
			assert.Equal(t, parts, again, "harmonizing twice gives identical parts")

			for vi, p := range parts {
				v := voices[vi]
				require.Len(t, p.Events, len(melody))

				prev, hasPrev := 0, false
				for i, e := range p.Events {
					m := melody[i]
					assert.Equal(t, m.Onset, e.Onset)
					assert.Equal(t, m.Duration, e.Duration)
					assert.Equal(t, m.Rest, e.Rest)
					if m.Rest {
						continue
					}

					assert.GreaterOrEqual(t, e.Pitch, v.Min)
					assert.LessOrEqual(t, e.Pitch, v.Max)

					interval, err := v.Role.interval(theory.QualityForDegree(scale.Degree(m.Pitch)))
					require.NoError(t, err)
					clamped := ClampToRange(m.Pitch-interval, v.Min, v.Max)
					want := clamped
					if hasPrev && abs(clamped-prev) > maxLeap {
						alt := clamped - octave
						if prev > clamped {
							alt = clamped + octave
						}
						if alt >= v.Min && alt <= v.Max && abs(alt-prev) < abs(clamped-prev) {
							want = alt
						}
					}
					assert.Equal(t, want, e.Pitch, "voice %s event %d", v.Name, i)
					prev, hasPrev = e.Pitch, true
				}
			}
		})
	}
}

func TestEnsemblesAreValid(t *testing.T) {
	for _, ens := range []Ensemble{StringQuartetPlusBass, SynthStack} {
		require.Len(t, ens.Voices, 4)
		for _, v := range ens.Voices {
			assert.NoError(t, v.Validate(), v.Name)
		}
		assert.Less(t, ens.Lead.Min, ens.Lead.Max)
	}
}
