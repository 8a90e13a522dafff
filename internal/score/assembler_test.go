package score

import (
	"math/rand"
	"testing"

	"github.com/Conceptual-Machines/orchestra-api/internal/compose"
	"github.com/Conceptual-Machines/orchestra-api/internal/harmony"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleAssignsIDsInOrder(t *testing.T) {
	meta := models.Metadata{Title: "t", Composer: DefaultComposer, Key: "C", Tempo: 90, TimeSignature: models.CommonTime}
	melody := models.Part{Name: "lead"}
	harmonized := []models.Part{{Name: "a"}, {Name: "b"}}

	s := Assemble(meta, melody, harmonized, DrumPart(nil))

	require.Len(t, s.Parts, 4)
	assert.Equal(t, meta, s.Metadata)
	for i, want := range []string{"lead", "a", "b", "Drum Kit"} {
		assert.Equal(t, want, s.Parts[i].Name)
		assert.Equal(t, []string{"P1", "P2", "P3", "P4"}[i], s.Parts[i].ID)
	}
	assert.True(t, s.Parts[3].Percussion)
	assert.Empty(t, harmonized[0].ID, "input slice is not modified")
}

func TestClassicalPipeline(t *testing.T) {
	scale := theory.NewScale(theory.MustParseKey("C"))
	a := compose.NewAssembler(scale, models.CommonTime, rand.New(rand.NewSource(42)))
	arr, err := a.Assemble(t.Context(), compose.FormABA, 10)
	require.NoError(t, err)

	ens := harmony.StringQuartetPlusBass
	parts, err := harmony.NewHarmonizer(scale).Harmonize(arr.Melody, ens.Voices)
	require.NoError(t, err)

	s := Assemble(models.Metadata{
		Title:         ClassicalTitle,
		Composer:      DefaultComposer,
		Key:           "C",
		Tempo:         DefaultTempo,
		TimeSignature: models.CommonTime,
	}, MelodyPart(ens.Lead, arr.Melody), parts)

	assert.Equal(t, 30, s.Measures())
	require.Len(t, s.Parts, 5)
	assert.Equal(t, models.Ticks(30)*models.CommonTime.MeasureTicks(), models.TotalDuration(s.Parts[0].Events))

	melody := s.Parts[0].Events
	for _, p := range s.Parts[1:] {
		require.Len(t, p.Events, len(melody), p.Name)
		for i, e := range p.Events {
			assert.Equal(t, melody[i].Onset, e.Onset)
			assert.Equal(t, melody[i].Duration, e.Duration)
			assert.Equal(t, melody[i].Rest, e.Rest)
			if !e.Rest {
				assert.GreaterOrEqual(t, e.Pitch, p.Min)
				assert.LessOrEqual(t, e.Pitch, p.Max)
			}
		}
	}
}
