package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Conceptual-Machines/orchestra-api/internal/continuation"
	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation/midifile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer(t *testing.T, gen continuation.Generator) (*Composer, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	c := NewComposer(store, gen, ComposerOptions{
		ArtifactDir:         t.TempDir(),
		ContinuationTimeout: time.Second,
	})
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("comp-%d", n)
	}
	return c, store
}

func TestComposeClassicalDefaults(t *testing.T) {
	c, store := newTestComposer(t, nil)

	comp, s, err := c.Compose(context.Background(), CompositionRequest{Seed: 7, RequestID: "req-1"})
	require.NoError(t, err)

	assert.Equal(t, "comp-1", comp.ID)
	assert.Equal(t, "aba", comp.Form)
	assert.Equal(t, "C", comp.Key)
	assert.Equal(t, "4/4", comp.TimeSignature)
	assert.Equal(t, 120, comp.Tempo)
	assert.Equal(t, 30, comp.Measures)
	assert.Equal(t, 5, comp.PartCount)
	assert.Equal(t, "Generated Orchestral Piece", comp.Title)
	assert.Equal(t, "SoundWave Studios", comp.Composer)
	assert.Equal(t, "none", comp.ContinuationBackend)
	assert.False(t, comp.ContinuationUsed)
	assert.Positive(t, comp.SizeBytes)

	assert.Equal(t, "Violin I", s.Parts[0].Name)
	assert.Equal(t, 30, s.Measures())

	for _, path := range []string{comp.MusicXMLPath, comp.MIDIPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, comp.ID, latest.ID)
	assert.Equal(t, "req-1", latest.RequestID)
}

func TestComposeIsDeterministicForSeed(t *testing.T) {
	c, _ := newTestComposer(t, nil)

	req := CompositionRequest{Key: "F#m", TimeSignature: "3/4", Measures: 6, Seed: 99}
	_, first, err := c.Compose(context.Background(), req)
	require.NoError(t, err)
	_, second, err := c.Compose(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposeEDM(t *testing.T) {
	c, _ := newTestComposer(t, nil)

	comp, s, err := c.Compose(context.Background(), CompositionRequest{Form: "edm", Measures: 8, Seed: 3})
	require.NoError(t, err)

	assert.Equal(t, "Cm", comp.Key)
	assert.Equal(t, 128, comp.Tempo)
	assert.Equal(t, "Generated EDM Track", comp.Title)
	assert.Equal(t, 2+8+4, comp.Measures)
	require.Len(t, s.Parts, 6)
	assert.Equal(t, "Synth Lead", s.Parts[0].Name)
	assert.True(t, s.Parts[5].Percussion)
}

func TestComposeUsesContinuation(t *testing.T) {
	var calls int
	gen := continuation.GeneratorFunc(func(_ context.Context, primer []models.NoteEvent, opts continuation.Options) ([]models.NoteEvent, error) {
		calls++
		var notes []models.NoteEvent
		for b := 0.0; b < opts.WindowBeats; b++ {
			notes = append(notes, models.NoteEvent{MidiNoteNumber: 64, Velocity: 80, StartBeats: b, DurationBeats: 1})
		}
		return notes, nil
	})
	c, _ := newTestComposer(t, gen)

	comp, _, err := c.Compose(context.Background(), CompositionRequest{Measures: 4, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, comp.ContinuationUsed)
	assert.Equal(t, "func", comp.ContinuationBackend)
}

func TestComposeFallsBackWhenContinuationFails(t *testing.T) {
	gen := continuation.GeneratorFunc(func(context.Context, []models.NoteEvent, continuation.Options) ([]models.NoteEvent, error) {
		return nil, apperrors.NewGenerationError("func", errors.New("model offline"))
	})
	c, _ := newTestComposer(t, gen)

	comp, s, err := c.Compose(context.Background(), CompositionRequest{Measures: 4, Seed: 1})
	require.NoError(t, err)
	assert.False(t, comp.ContinuationUsed)
	assert.Equal(t, 12, s.Measures())
}

func TestComposeTimesOutSlowContinuation(t *testing.T) {
	gen := continuation.GeneratorFunc(func(ctx context.Context, _ []models.NoteEvent, _ continuation.Options) ([]models.NoteEvent, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c, _ := newTestComposer(t, gen)
	c.opts.ContinuationTimeout = 20 * time.Millisecond

	comp, _, err := c.Compose(context.Background(), CompositionRequest{Measures: 2, Seed: 1})
	require.NoError(t, err)
	assert.False(t, comp.ContinuationUsed)
}

func TestComposeRejectsBadRequests(t *testing.T) {
	temp := 2.0
	tests := []struct {
		name string
		req  CompositionRequest
		want error
	}{
		{"key", CompositionRequest{Key: "H"}, apperrors.ErrInvalidKey},
		{"form", CompositionRequest{Form: "sonata"}, apperrors.ErrInvalidForm},
		{"measures", CompositionRequest{Measures: MaxMeasures + 1}, apperrors.ErrInvalidRequest},
		{"tempo", CompositionRequest{Tempo: -5}, apperrors.ErrInvalidRequest},
		{"temperature", CompositionRequest{Temperature: &temp}, apperrors.ErrInvalidRequest},
		{"time signature", CompositionRequest{TimeSignature: "4"}, apperrors.ErrInvalidRequest},
		{"edm odd measures", CompositionRequest{Form: "edm", Measures: 5}, apperrors.ErrInvalidForm},
		{"upload type", CompositionRequest{SourceName: "melody.wav", Source: []byte("RIFF")}, apperrors.ErrImportParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := newTestComposer(t, nil)
			_, _, err := c.Compose(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)

			_, err = store.Latest(context.Background())
			assert.ErrorIs(t, err, apperrors.ErrNotFound, "nothing is stored on failure")
		})
	}
}

func uploadedMIDI(t *testing.T) []byte {
	t.Helper()
	melody := &models.Score{
		Metadata: models.Metadata{Title: "Ode", Tempo: 96, TimeSignature: models.CommonTime},
		Parts: []models.Part{{
			ID: "P1", Name: "Piano",
			Events: []models.Event{
				{Onset: 0, Duration: 480, Pitch: 64, Velocity: 80},
				{Onset: 480, Duration: 480, Pitch: 64, Velocity: 80},
				{Onset: 960, Duration: 480, Pitch: 65, Velocity: 80},
				{Onset: 1440, Duration: 480, Pitch: 67, Velocity: 80},
				{Onset: 1920, Duration: 960, Pitch: 67, Velocity: 80},
			},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, midifile.NewEncoder().Encode(&buf, melody))
	return buf.Bytes()
}

func TestComposeHarmonizesUpload(t *testing.T) {
	c, _ := newTestComposer(t, nil)

	comp, s, err := c.Compose(context.Background(), CompositionRequest{
		SourceName: "ode.mid",
		Source:     uploadedMIDI(t),
		Seed:       1,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ode", comp.Title)
	assert.Equal(t, 96, comp.Tempo)
	assert.Equal(t, 2, comp.Measures, "six quarter notes round up to two measures")
	assert.Equal(t, "ode.mid", comp.SourceFile)
	require.Len(t, s.Parts, 5)

	var pitches []int
	for _, e := range s.Parts[0].Events {
		if !e.Rest {
			pitches = append(pitches, e.Pitch)
		}
	}
	assert.Equal(t, []int{64, 64, 65, 67}, pitches[:4])
}

func TestArtifact(t *testing.T) {
	c, _ := newTestComposer(t, nil)
	ctx := context.Background()

	_, _, err := c.Artifact(ctx, "latest", notation.FormatMusicXML)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first, _, err := c.Compose(ctx, CompositionRequest{Measures: 2, Seed: 1})
	require.NoError(t, err)
	second, _, err := c.Compose(ctx, CompositionRequest{Measures: 2, Seed: 2})
	require.NoError(t, err)

	comp, path, err := c.Artifact(ctx, "latest", notation.FormatMusicXML)
	require.NoError(t, err)
	assert.Equal(t, second.ID, comp.ID)
	assert.Equal(t, second.MusicXMLPath, path)

	_, path, err = c.Artifact(ctx, first.ID, notation.FormatMIDI)
	require.NoError(t, err)
	assert.Equal(t, first.MIDIPath, path)

	require.NoError(t, os.Remove(first.MIDIPath))
	_, _, err = c.Artifact(ctx, first.ID, notation.FormatMIDI)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = c.Artifact(ctx, "nope", notation.FormatMusicXML)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
