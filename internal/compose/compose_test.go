package compose

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/Conceptual-Machines/orchestra-api/internal/continuation"
	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func cScale() theory.Scale {
	return theory.NewScale(theory.MustParseKey("C"))
}

// assertContiguous checks events start at 0, follow each other without gaps
// or overlaps and add up to want.
func assertContiguous(t *testing.T, events []models.Event, want models.Ticks) {
	t.Helper()
	var cursor models.Ticks
	for i, e := range events {
		require.Equal(t, cursor, e.Onset, "event %d onset", i)
		require.Greater(t, e.Duration, models.Ticks(0), "event %d duration", i)
		cursor = e.End()
	}
	assert.Equal(t, want, cursor)
	assert.Equal(t, want, models.TotalDuration(events))
}

func TestPhraseFillsMeasuresExactly(t *testing.T) {
	signatures := []models.TimeSignature{{4, 4}, {3, 4}, {6, 8}, {5, 4}, {2, 2}}
	strategies := []Strategy{ThemeStrategy, ContrastStrategy, GrooveStrategy}

	for _, ts := range signatures {
		for _, st := range strategies {
			t.Run(ts.String()+"/"+st.Name, func(t *testing.T) {
				for seed := int64(1); seed <= 20; seed++ {
					g := NewPhraseGenerator(cScale(), ts, newRand(seed))
					section := g.Generate(st, 7)
					assert.Equal(t, 7, section.Measures)
					assertContiguous(t, section.Events, 7*ts.MeasureTicks())
				}
			})
		}
	}
}

func TestPhraseNeverCrossesBarline(t *testing.T) {
	ts := models.TimeSignature{Beats: 3, BeatType: 4}
	g := NewPhraseGenerator(cScale(), ts, newRand(7))
	section := g.Generate(ThemeStrategy, 12)

	measure := ts.MeasureTicks()
	for _, e := range section.Events {
		assert.Equal(t, e.Onset/measure, (e.End()-1)/measure, "event at %d crosses a barline", e.Onset)
	}
}

func TestPhrasePitchesStayInScale(t *testing.T) {
	scale := cScale()
	g := NewPhraseGenerator(scale, models.CommonTime, newRand(3))
	section := g.Generate(ContrastStrategy, 16)

	inScale := map[int]bool{}
	for _, p := range scale.Pitches {
		inScale[p] = true
	}
	for _, e := range section.Events {
		if e.Rest {
			continue
		}
		assert.True(t, inScale[e.Pitch], "pitch %d not in scale", e.Pitch)
		assert.GreaterOrEqual(t, e.Velocity, 1)
		assert.LessOrEqual(t, e.Velocity, 127)
	}
}

func TestPhrasePrimaryDegreesDominate(t *testing.T) {
	scale := cScale()
	g := NewPhraseGenerator(scale, models.CommonTime, newRand(11))
	section := g.Generate(ThemeStrategy, 200)

	primary, total := 0, 0
	for _, e := range section.Events {
		if e.Rest {
			continue
		}
		total++
		switch scale.Degree(e.Pitch) {
		case 1, 3, 5:
			primary++
		}
	}
	require.NotZero(t, total)
	// 0.7 + 0.3*3/7 is about 0.83
	ratio := float64(primary) / float64(total)
	assert.InDelta(t, 0.83, ratio, 0.06)
}

func TestArticulationTags(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		a := NewPhraseGenerator(cScale(), models.CommonTime, newRand(seed)).Generate(ThemeStrategy, 8)
		for _, e := range a.Events {
			if e.Rest {
				continue
			}
			assert.Equal(t, e.Duration >= 2*models.TicksPerBeat, e.Dynamic == models.DynamicCrescendo)
			assert.Equal(t, models.ArticulationNone, e.Articulation)
		}

		b := NewPhraseGenerator(cScale(), models.CommonTime, newRand(seed)).Generate(ContrastStrategy, 8)
		for _, e := range b.Events {
			if e.Rest {
				continue
			}
			assert.Equal(t, e.Duration <= models.TicksPerBeat/2, e.Articulation == models.ArticulationStaccato)
			assert.Equal(t, models.DynamicNone, e.Dynamic)
		}
	}
}

func TestPhraseIsReproducibleFromSeed(t *testing.T) {
	a := NewPhraseGenerator(cScale(), models.CommonTime, newRand(42)).Generate(ThemeStrategy, 8)
	b := NewPhraseGenerator(cScale(), models.CommonTime, newRand(42)).Generate(ThemeStrategy, 8)
	assert.Equal(t, a, b)
}

func TestThemeAndContrastSoundEverySlot(t *testing.T) {
	for _, st := range []Strategy{ThemeStrategy, ContrastStrategy} {
		t.Run(st.Name, func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				section := NewPhraseGenerator(cScale(), models.CommonTime, newRand(seed)).Generate(st, 8)
				for _, e := range section.Events {
					assert.False(t, e.Rest, "seed %d: rest at %d", seed, e.Onset)
				}
			}
		})
	}
}

func TestTile(t *testing.T) {
	ts := models.CommonTime
	seed := NewPhraseGenerator(cScale(), ts, newRand(5)).Generate(GrooveStrategy, 2).Events
	seed = append(seed[:0:0], seed...)
	// pin a few velocities to the edges to exercise clamping
	seed[0].Rest = false
	seed[0].Velocity = 125
	seed[len(seed)-1].Rest = false
	seed[len(seed)-1].Velocity = 4

	tiled, err := Tile(newRand(9), seed, 2, 8, ts)
	require.NoError(t, err)
	require.Len(t, tiled, 4*len(seed))
	assertContiguous(t, tiled, 8*ts.MeasureTicks())

	stride := 2 * ts.MeasureTicks()
	for i, e := range tiled {
		copyIndex := i / len(seed)
		src := seed[i%len(seed)]
		assert.Equal(t, src.Onset+models.Ticks(copyIndex)*stride, e.Onset)
		assert.Equal(t, src.Duration, e.Duration)
		assert.Equal(t, src.Pitch, e.Pitch)
		if e.Rest {
			continue
		}
		assert.GreaterOrEqual(t, e.Velocity, max(0, src.Velocity-10))
		assert.LessOrEqual(t, e.Velocity, min(127, src.Velocity+10))
	}
}

func TestTileRejectsUnevenTarget(t *testing.T) {
	_, err := Tile(newRand(1), nil, 3, 8, models.CommonTime)
	assert.Error(t, err)

	_, err = Tile(newRand(1), nil, 0, 8, models.CommonTime)
	assert.Error(t, err)
}

func TestBuildup(t *testing.T) {
	ts := models.CommonTime
	section := Buildup(DefaultBuildup, 60, ts)

	assert.Equal(t, models.SectionBuildup, section.Type)
	assert.Equal(t, 4, section.Measures)
	assertContiguous(t, section.Events, 4*ts.MeasureTicks())

	measure := ts.MeasureTicks()
	counts := make([]int, 4)
	for _, e := range section.Events {
		if e.Rest {
			continue
		}
		m := int(e.Onset / measure)
		counts[m]++
		want := DefaultBuildup.BaseVelocity + m*DefaultBuildup.Increment
		if e.Onset%measure == 0 {
			want += DefaultBuildup.Accent
			assert.Equal(t, models.ArticulationAccent, e.Articulation)
		}
		assert.Equal(t, min(127, want), e.Velocity)
		assert.Equal(t, DefaultBuildup.NoteDuration, e.Duration)
	}
	assert.Equal(t, []int{2, 4, 8, 16}, counts)
}

func TestBuildupClampsVelocity(t *testing.T) {
	cfg := BuildupConfig{Subdivisions: []int{1, 3}, BaseVelocity: 120, Increment: 20, Accent: 10}
	section := Buildup(cfg, 60, models.TimeSignature{Beats: 3, BeatType: 4})
	for _, e := range section.Events {
		if !e.Rest {
			assert.LessOrEqual(t, e.Velocity, 127)
		}
	}
	assertContiguous(t, section.Events, 2*models.TimeSignature{Beats: 3, BeatType: 4}.MeasureTicks())
}

func TestDrumPattern(t *testing.T) {
	events := DrumPattern(FourOnTheFloor, 2, models.CommonTime)

	kicks := 0
	var end models.Ticks
	for _, e := range events {
		if e.Pitch == DrumKick {
			kicks++
			assert.Zero(t, e.Onset%models.TicksPerBeat)
		}
		if e.End() > end {
			end = e.End()
		}
	}
	assert.Equal(t, 8, kicks)
	assert.Equal(t, 2*models.CommonTime.MeasureTicks(), end)
}

func TestAssembleABA(t *testing.T) {
	a := NewAssembler(cScale(), models.CommonTime, newRand(2024))
	arr, err := a.Assemble(context.Background(), FormABA, 10)
	require.NoError(t, err)

	require.Len(t, arr.Sections, 3)
	assert.Equal(t, []models.SectionType{models.SectionA, models.SectionB, models.SectionA},
		[]models.SectionType{arr.Sections[0].Type, arr.Sections[1].Type, arr.Sections[2].Type})
	assert.Equal(t, 30, arr.Measures)
	assertContiguous(t, arr.Melody, 30*models.CommonTime.MeasureTicks())
	assert.False(t, arr.ContinuationUsed)
	assert.Empty(t, arr.Drums)

	// the reprise is generated independently; it only has to satisfy the
	// same invariants as the first A section
	for _, s := range arr.Sections {
		assertContiguous(t, s.Events, 10*models.CommonTime.MeasureTicks())
	}
}

func TestAssembleABAUsesContinuation(t *testing.T) {
	var gotPrimer []models.NoteEvent
	var gotOpts continuation.Options
	gen := continuation.GeneratorFunc(func(_ context.Context, primer []models.NoteEvent, opts continuation.Options) ([]models.NoteEvent, error) {
		gotPrimer = primer
		gotOpts = opts
		return []models.NoteEvent{
			{MidiNoteNumber: 62, Velocity: 70, StartBeats: 0, DurationBeats: 1},
			{MidiNoteNumber: 65, Velocity: 0, StartBeats: 1.1, DurationBeats: 2.9},
			{MidiNoteNumber: 67, Velocity: 90, StartBeats: 6, DurationBeats: 100},
		}, nil
	})

	a := NewAssembler(cScale(), models.CommonTime, newRand(1))
	a.Continuation = gen
	a.Temperature = 3
	arr, err := a.Assemble(context.Background(), FormABA, 2)
	require.NoError(t, err)

	assert.True(t, arr.ContinuationUsed)
	assert.NotEmpty(t, gotPrimer)
	assert.Equal(t, 8.0, gotOpts.WindowBeats)
	assert.Equal(t, continuation.MaxTemperature, gotOpts.Temperature)

	b := arr.Sections[1]
	assertContiguous(t, b.Events, 2*models.CommonTime.MeasureTicks())
	var pitched []models.Event
	for _, e := range b.Events {
		if !e.Rest {
			pitched = append(pitched, e)
		}
	}
	require.Len(t, pitched, 3)
	assert.Equal(t, models.Ticks(480), pitched[1].Onset, "start quantized to the sixteenth grid")
	assert.Equal(t, DefaultVelocity, pitched[1].Velocity)
	assert.Equal(t, models.Ticks(6*480), pitched[2].Onset)
	assert.Equal(t, models.Ticks(2*480), pitched[2].Duration, "last note clamped to the window")
}

func TestAssembleFallsBackOnGeneratorFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  continuation.GeneratorFunc
	}{
		{"error", func(context.Context, []models.NoteEvent, continuation.Options) ([]models.NoteEvent, error) {
			return nil, errors.New("model unavailable")
		}},
		{"timeout", func(ctx context.Context, _ []models.NoteEvent, _ continuation.Options) ([]models.NoteEvent, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		{"empty", func(context.Context, []models.NoteEvent, continuation.Options) ([]models.NoteEvent, error) {
			return nil, nil
		}},
		{"out of window", func(context.Context, []models.NoteEvent, continuation.Options) ([]models.NoteEvent, error) {
			return []models.NoteEvent{{MidiNoteNumber: 60, Velocity: 80, StartBeats: 400, DurationBeats: 1}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			a := NewAssembler(cScale(), models.CommonTime, newRand(8))
			a.Continuation = tt.gen
			var fellBack []models.SectionType
			a.OnFallback = func(section models.SectionType, err error) {
				assert.Error(t, err)
				fellBack = append(fellBack, section)
			}
			arr, err := a.Assemble(ctx, FormABA, 4)
			require.NoError(t, err)
			assert.False(t, arr.ContinuationUsed)
			assert.Equal(t, []models.SectionType{models.SectionB}, fellBack)
			assert.Equal(t, models.SectionB, arr.Sections[1].Type)
			assertContiguous(t, arr.Melody, 12*models.CommonTime.MeasureTicks())
		})
	}
}

func TestAssembleEDM(t *testing.T) {
	ts := models.CommonTime
	a := NewAssembler(theory.NewScale(theory.MustParseKey("Cm")), ts, newRand(128))
	arr, err := a.Assemble(context.Background(), FormEDM, 8)
	require.NoError(t, err)

	require.Len(t, arr.Sections, 3)
	assert.Equal(t, models.SectionGroove, arr.Sections[0].Type)
	assert.Equal(t, models.SectionTiled, arr.Sections[1].Type)
	assert.Equal(t, models.SectionBuildup, arr.Sections[2].Type)
	assert.Equal(t, 2+8+4, arr.Measures)
	assertContiguous(t, arr.Melody, 14*ts.MeasureTicks())

	var drumEnd models.Ticks
	for _, e := range arr.Drums {
		if e.End() > drumEnd {
			drumEnd = e.End()
		}
	}
	assert.Equal(t, 14*ts.MeasureTicks(), drumEnd)
}

func TestAssembleEDMPrimesWithEmptySequence(t *testing.T) {
	calls := 0
	gen := continuation.GeneratorFunc(func(_ context.Context, primer []models.NoteEvent, _ continuation.Options) ([]models.NoteEvent, error) {
		calls++
		assert.Empty(t, primer)
		return []models.NoteEvent{{MidiNoteNumber: 60, Velocity: 100, StartBeats: 0, DurationBeats: 0.5}}, nil
	})

	a := NewAssembler(cScale(), models.CommonTime, newRand(1))
	a.Continuation = gen
	arr, err := a.Assemble(context.Background(), FormEDM, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, arr.ContinuationUsed)
}

func TestAssembleRejectsBadInput(t *testing.T) {
	a := NewAssembler(cScale(), models.CommonTime, newRand(1))

	_, err := a.Assemble(context.Background(), FormEDM, 7)
	assert.Error(t, err)

	_, err = a.Assemble(context.Background(), FormABA, 0)
	assert.Error(t, err)

	_, err = a.Assemble(context.Background(), Form("rondo"), 4)
	assert.Error(t, err)

	_, err = ParseForm("rondo")
	assert.Error(t, err)
	f, err := ParseForm("EDM")
	require.NoError(t, err)
	assert.Equal(t, FormEDM, f)
}

func TestFromNoteEventsOverlaps(t *testing.T) {
	notes := []models.NoteEvent{
		{MidiNoteNumber: 60, Velocity: 80, StartBeats: 0, DurationBeats: 2},
		{MidiNoteNumber: 64, Velocity: 80, StartBeats: 0, DurationBeats: 1},   // same start, dropped
		{MidiNoteNumber: 67, Velocity: 80, StartBeats: 1, DurationBeats: 0.5}, // cuts the first note
		{MidiNoteNumber: 200, Velocity: 80, StartBeats: 2, DurationBeats: 1},  // not a MIDI pitch
	}
	events, ok := FromNoteEvents(notes, 4*models.TicksPerBeat)
	require.True(t, ok)
	assertContiguous(t, events, 4*models.TicksPerBeat)

	require.Len(t, events, 3)
	assert.Equal(t, 60, events[0].Pitch)
	assert.Equal(t, models.TicksPerBeat, events[0].Duration)
	assert.Equal(t, 67, events[1].Pitch)
	assert.True(t, events[2].Rest)
}

func TestMelodyFromImport(t *testing.T) {
	notes := []models.NoteEvent{
		{MidiNoteNumber: 67, Velocity: 80, StartBeats: 0, DurationBeats: 1},
		{MidiNoteNumber: 64, Velocity: 0, StartBeats: 0, DurationBeats: 2},
		{MidiNoteNumber: 72, Velocity: 70, StartBeats: 2.5, DurationBeats: 2},
	}

	events, measures, err := MelodyFromImport(notes, models.CommonTime)
	require.NoError(t, err)
	assert.Equal(t, 2, measures)
	assertContiguous(t, events, 2*models.CommonTime.MeasureTicks())
	require.Len(t, events, 4)
	assert.Equal(t, 67, events[0].Pitch, "first tone of a chord wins")
	assert.True(t, events[1].Rest)
	assert.Equal(t, models.Ticks(1200), events[2].Onset)
	assert.True(t, events[3].Rest)

	// in 6/8 the beat is an eighth, so quarter-note input doubles
	events, measures, err = MelodyFromImport(notes[:1], models.TimeSignature{Beats: 6, BeatType: 8})
	require.NoError(t, err)
	assert.Equal(t, 1, measures)
	assert.Equal(t, 2*models.TicksPerBeat, events[0].Duration)

	_, _, err = MelodyFromImport(nil, models.CommonTime)
	assert.ErrorIs(t, err, apperrors.ErrEmptyMelody)
}
