package compose

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Conceptual-Machines/orchestra-api/internal/continuation"
	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
)

// Form names a section layout
type Form string

const (
	FormABA Form = "aba"
	FormEDM Form = "edm"
)

// ParseForm accepts "aba", "ABA", "edm", "EDM"
func ParseForm(s string) (Form, error) {
	switch Form(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormABA:
		return FormABA, nil
	case FormEDM:
		return FormEDM, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: aba, edm)", apperrors.ErrInvalidForm, s)
	}
}

const (
	DefaultSectionMeasures = 10
	GrooveSeedMeasures     = 2
	DefaultTiledMeasures   = 8
)

// Arrangement is the assembled form: its sections in order, the melody
// laid out on one timeline, and an optional percussion line.
type Arrangement struct {
	Form     Form
	Sections []models.Section
	Melody   []models.Event
	Drums    []models.Event
	Measures int
	// ContinuationUsed is true when a section came from the continuation generator
	ContinuationUsed bool
}

// Assembler builds forms out of phrases, tiles and buildups. Continuation
// is optional; when nil every section is generated locally.
type Assembler struct {
	Scale         theory.Scale
	TimeSignature models.TimeSignature
	Rand          *rand.Rand
	Continuation  continuation.Generator
	Temperature   float64
	Tempo         int
	Buildup       BuildupConfig
	// OnFallback, if set, is called when a section falls back to the
	// local generator
	OnFallback func(section models.SectionType, err error)
}

// NewAssembler creates an assembler with the default buildup
func NewAssembler(scale theory.Scale, ts models.TimeSignature, rng *rand.Rand) *Assembler {
	return &Assembler{
		Scale:         scale,
		TimeSignature: ts,
		Rand:          rng,
		Buildup:       DefaultBuildup,
	}
}

// Assemble builds the given form. For ABA, measures is the length of each
// section. For EDM it is the length of the tiled repetition and must be a
// multiple of the two-measure groove.
func (a *Assembler) Assemble(ctx context.Context, form Form, measures int) (*Arrangement, error) {
	if measures <= 0 {
		return nil, fmt.Errorf("%w: measures must be positive, got %d", apperrors.ErrInvalidForm, measures)
	}
	switch form {
	case FormABA:
		return a.assembleABA(ctx, measures), nil
	case FormEDM:
		return a.assembleEDM(ctx, measures)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidForm, form)
	}
}

func (a *Assembler) assembleABA(ctx context.Context, measures int) *Arrangement {
	phrases := NewPhraseGenerator(a.Scale, a.TimeSignature, a.Rand)

	first := phrases.Generate(ThemeStrategy, measures)
	contrast, fromGenerator := a.continueOrGenerate(ctx, first.Events, ContrastStrategy, measures)
	// the reprise is drawn again from the theme strategy, not copied
	reprise := phrases.Generate(ThemeStrategy, measures)

	arr := &Arrangement{Form: FormABA, ContinuationUsed: fromGenerator}
	arr.add(a.TimeSignature, first, contrast, reprise)
	return arr
}

func (a *Assembler) assembleEDM(ctx context.Context, tiledMeasures int) (*Arrangement, error) {
	groove, fromGenerator := a.continueOrGenerate(ctx, nil, GrooveStrategy, GrooveSeedMeasures)

	tiledEvents, err := Tile(a.Rand, groove.Events, GrooveSeedMeasures, tiledMeasures, a.TimeSignature)
	if err != nil {
		return nil, err
	}
	tiled := models.Section{Type: models.SectionTiled, Measures: tiledMeasures, Events: tiledEvents}
	buildup := Buildup(a.Buildup, a.Scale.Pitches[0], a.TimeSignature)

	arr := &Arrangement{Form: FormEDM, ContinuationUsed: fromGenerator}
	arr.add(a.TimeSignature, groove, tiled, buildup)

	measureTicks := a.TimeSignature.MeasureTicks()
	loopMeasures := GrooveSeedMeasures + tiledMeasures
	arr.Drums = DrumPattern(FourOnTheFloor, loopMeasures, a.TimeSignature)
	arr.Drums = append(arr.Drums, models.Shift(SnareRoll(a.Buildup, a.TimeSignature), models.Ticks(loopMeasures)*measureTicks)...)
	return arr, nil
}

// continueOrGenerate asks the continuation generator for a section primed
// with the given events. Any failure, or an empty result, falls back to the
// local phrase generator with the strategy's policy.
func (a *Assembler) continueOrGenerate(ctx context.Context, primer []models.Event, st Strategy, measures int) (models.Section, bool) {
	if a.Continuation != nil {
		window := models.Ticks(measures) * a.TimeSignature.MeasureTicks()
		notes, err := a.Continuation.Continue(ctx, ToNoteEvents(primer, 0), continuation.Options{
			Temperature:     continuation.ClampTemperature(a.Temperature),
			WindowBeats:     window.Beats(),
			Tempo:           a.Tempo,
			KeyLabel:        a.Scale.Key.String(),
			BeatsPerMeasure: a.TimeSignature.Beats,
		})
		if err == nil {
			events, ok := FromNoteEvents(notes, window)
			if ok {
				return models.Section{Type: st.Section, Measures: measures, Events: events}, true
			}
			err = fmt.Errorf("%w: no usable notes in %d returned", apperrors.ErrGeneration, len(notes))
		}
		logger.Warn("Continuation failed, using local generator", logger.Fields{
			"backend": a.Continuation.Name(),
			"section": string(st.Section),
			"error":   err.Error(),
		})
		if a.OnFallback != nil {
			a.OnFallback(st.Section, err)
		}
	}
	return NewPhraseGenerator(a.Scale, a.TimeSignature, a.Rand).Generate(st, measures), false
}

// add appends sections and lays their events out end to end
func (arr *Arrangement) add(ts models.TimeSignature, sections ...models.Section) {
	measureTicks := ts.MeasureTicks()
	for _, s := range sections {
		offset := models.Ticks(arr.Measures) * measureTicks
		arr.Sections = append(arr.Sections, s)
		arr.Melody = append(arr.Melody, models.Shift(s.Events, offset)...)
		arr.Measures += s.Measures
	}
}
