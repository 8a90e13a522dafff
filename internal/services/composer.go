package services

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/Conceptual-Machines/orchestra-api/internal/compose"
	"github.com/Conceptual-Machines/orchestra-api/internal/continuation"
	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/harmony"
	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/metrics"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation"
	"github.com/Conceptual-Machines/orchestra-api/internal/score"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
	"github.com/google/uuid"
)

const (
	DefaultMeasures    = 10
	MaxMeasures        = 200
	DefaultTemperature = 1.2
	maxTempo           = 300

	musicXMLExt = ".musicxml"
	midiExt     = ".mid"
)

// CompositionRequest holds the caller's choices. Zero values select the
// defaults for the form.
type CompositionRequest struct {
	Form          string
	Key           string
	TimeSignature string
	Tempo         int
	Temperature   *float64
	Measures      int
	Seed          int64
	Title         string

	// SourceName and Source carry an uploaded melody to harmonize
	SourceName string
	Source     []byte

	RequestID string
	UserID    string
}

// ComposerOptions configures a Composer
type ComposerOptions struct {
	ArtifactDir         string
	Composer            string
	DefaultSeed         int64
	ContinuationTimeout time.Duration
	CloudWatch          *metrics.Client
	Sentry              *metrics.SentryMetrics
}

// Composer runs the whole pipeline: melody, harmony, score, export and the
// composition record
type Composer struct {
	store     database.Store
	generator continuation.Generator
	opts      ComposerOptions
	musicXML  *notation.Exporter
	midi      *notation.Exporter
	now       func() time.Time
	newID     func() string
}

// NewComposer creates a composer. generator may be nil.
func NewComposer(store database.Store, generator continuation.Generator, opts ComposerOptions) *Composer {
	if opts.Composer == "" {
		opts.Composer = score.DefaultComposer
	}
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = os.TempDir()
	}
	return &Composer{
		store:     store,
		generator: generator,
		opts:      opts,
		musicXML:  notation.NewMusicXMLExporter(),
		midi:      notation.NewMIDIExporter(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ContinuationBackend names the configured backend, or "none"
func (c *Composer) ContinuationBackend() string {
	if c.generator == nil {
		return continuation.BackendNone
	}
	return c.generator.Name()
}

// plan is a validated request with defaults applied
type plan struct {
	form        compose.Form
	scale       theory.Scale
	ts          models.TimeSignature
	tempo       int
	temperature float64
	measures    int
	seed        int64
	title       string
}

func (c *Composer) plan(req CompositionRequest) (*plan, error) {
	formName := req.Form
	if formName == "" {
		formName = string(compose.FormABA)
	}
	form, err := compose.ParseForm(formName)
	if err != nil {
		return nil, err
	}

	p := &plan{form: form, tempo: req.Tempo, measures: req.Measures, seed: req.Seed, title: req.Title}

	key := req.Key
	if key == "" {
		key = score.DefaultClassicalKey
		if form == compose.FormEDM {
			key = score.DefaultEDMKey
		}
	}
	if p.scale, err = theory.ScaleForKey(key); err != nil {
		return nil, err
	}

	if req.TimeSignature == "" {
		p.ts = models.CommonTime
	} else if p.ts, err = models.ParseTimeSignature(req.TimeSignature); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}

	if p.tempo == 0 {
		p.tempo = score.DefaultTempo
		if form == compose.FormEDM {
			p.tempo = score.DefaultEDMTempo
		}
	}
	if p.tempo < 0 || p.tempo > maxTempo {
		return nil, fmt.Errorf("%w: tempo must be between 1 and %d, got %d", apperrors.ErrInvalidRequest, maxTempo, p.tempo)
	}

	if p.measures == 0 {
		p.measures = DefaultMeasures
	}
	if p.measures < 0 || p.measures > MaxMeasures {
		return nil, fmt.Errorf("%w: measures must be between 1 and %d, got %d", apperrors.ErrInvalidRequest, MaxMeasures, p.measures)
	}

	p.temperature = DefaultTemperature
	if req.Temperature != nil {
		p.temperature = *req.Temperature
	}
	if p.temperature < 0 || p.temperature > continuation.MaxTemperature {
		return nil, fmt.Errorf("%w: temperature must be between 0 and %.1f", apperrors.ErrInvalidRequest, continuation.MaxTemperature)
	}

	if p.seed == 0 {
		p.seed = c.opts.DefaultSeed
	}
	if p.seed == 0 {
		p.seed = c.now().UnixNano()
	}

	if p.title == "" {
		p.title = score.ClassicalTitle
		if form == compose.FormEDM {
			p.title = score.EDMTitle
		}
	}
	return p, nil
}

// Compose runs the pipeline for one request and stores the result
func (c *Composer) Compose(ctx context.Context, req CompositionRequest) (*models.Composition, *models.Score, error) {
	start := c.now()
	comp, s, err := c.compose(ctx, req)
	if err != nil {
		c.opts.CloudWatch.RecordComposition(req.Form, 0, 0, time.Since(start), false)
		return nil, nil, err
	}

	duration := time.Since(start)
	c.opts.CloudWatch.RecordComposition(comp.Form, comp.PartCount, comp.Measures, duration, true)
	c.opts.Sentry.RecordComposition(ctx, comp.Form, comp.PartCount, comp.Measures, duration, comp.ContinuationUsed)
	logger.Info("Composition created", logger.Fields{
		"id":                comp.ID,
		"form":              comp.Form,
		"key":               comp.Key,
		"measures":          comp.Measures,
		"parts":             comp.PartCount,
		"continuation_used": comp.ContinuationUsed,
		"duration_ms":       duration.Milliseconds(),
	})
	return comp, s, nil
}

func (c *Composer) compose(ctx context.Context, req CompositionRequest) (*models.Composition, *models.Score, error) {
	p, err := c.plan(req)
	if err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(p.seed))

	ensemble := harmony.StringQuartetPlusBass
	if p.form == compose.FormEDM {
		ensemble = harmony.SynthStack
	}

	var (
		melody           []models.Event
		drums            []models.Event
		totalMeasures    int
		continuationUsed bool
	)
	if len(req.Source) > 0 {
		melody, totalMeasures, err = c.importMelody(req, p)
		if err != nil {
			return nil, nil, err
		}
		if p.form == compose.FormEDM {
			drums = compose.DrumPattern(compose.FourOnTheFloor, totalMeasures, p.ts)
		}
	} else {
		arr, err := c.assemble(ctx, p, rng)
		if err != nil {
			return nil, nil, err
		}
		melody, drums, totalMeasures, continuationUsed = arr.Melody, arr.Drums, arr.Measures, arr.ContinuationUsed
	}

	harmonized, err := harmony.NewHarmonizer(p.scale).Harmonize(melody, ensemble.Voices)
	if err != nil {
		return nil, nil, err
	}

	meta := models.Metadata{
		Title:         p.title,
		Composer:      c.opts.Composer,
		Key:           p.scale.Key.String(),
		Tempo:         p.tempo,
		TimeSignature: p.ts,
	}
	var extras []models.Part
	if len(drums) > 0 {
		extras = append(extras, score.DrumPart(drums))
	}
	s := score.Assemble(meta, score.MelodyPart(ensemble.Lead, melody), harmonized, extras...)

	id := c.newID()
	xmlPath := filepath.Join(c.opts.ArtifactDir, id+musicXMLExt)
	midiPath := filepath.Join(c.opts.ArtifactDir, id+midiExt)
	if err := c.musicXML.Export(s, xmlPath); err != nil {
		return nil, nil, err
	}
	if err := c.midi.Export(s, midiPath); err != nil {
		return nil, nil, err
	}

	var size int64
	if info, err := os.Stat(xmlPath); err == nil {
		size = info.Size()
	}

	comp := &models.Composition{
		ID:                  id,
		CreatedAt:           c.now(),
		RequestID:           req.RequestID,
		UserID:              req.UserID,
		Title:               p.title,
		Composer:            c.opts.Composer,
		Key:                 meta.Key,
		Form:                string(p.form),
		TimeSignature:       p.ts.String(),
		Tempo:               p.tempo,
		Temperature:         p.temperature,
		Seed:                p.seed,
		Measures:            totalMeasures,
		PartCount:           len(s.Parts),
		ContinuationBackend: c.ContinuationBackend(),
		ContinuationUsed:    continuationUsed,
		SourceFile:          req.SourceName,
		MusicXMLPath:        xmlPath,
		MIDIPath:            midiPath,
		SizeBytes:           size,
	}
	if err := c.store.Save(ctx, comp); err != nil {
		return nil, nil, err
	}
	return comp, s, nil
}

func (c *Composer) assemble(ctx context.Context, p *plan, rng *rand.Rand) (*compose.Arrangement, error) {
	a := compose.NewAssembler(p.scale, p.ts, rng)
	a.Continuation = c.generator
	a.Temperature = p.temperature
	a.Tempo = p.tempo
	a.OnFallback = func(section models.SectionType, err error) {
		c.opts.CloudWatch.RecordContinuationFallback(c.ContinuationBackend())
		c.opts.Sentry.RecordContinuationFallback(ctx, c.ContinuationBackend(), string(section), err)
	}

	if c.generator != nil && c.opts.ContinuationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ContinuationTimeout)
		defer cancel()
	}
	return a.Assemble(ctx, p.form, p.measures)
}

// importMelody reads the uploaded file. The file's own time signature,
// tempo and title are used unless the request set them.
func (c *Composer) importMelody(req CompositionRequest, p *plan) ([]models.Event, int, error) {
	imported, err := notation.ImportBytes(req.SourceName, req.Source)
	if err != nil {
		return nil, 0, err
	}
	if req.TimeSignature == "" && imported.TimeSignature.Beats > 0 && imported.TimeSignature.BeatType > 0 {
		p.ts = imported.TimeSignature
	}
	if req.Tempo == 0 && imported.Tempo > 0 {
		p.tempo = imported.Tempo
	}
	if req.Title == "" && imported.Title != "" {
		p.title = imported.Title
	}
	return compose.MelodyFromImport(imported.Notes, p.ts)
}

// Artifact returns the file path of a stored composition in the given
// format ("musicxml" or "midi")
func (c *Composer) Artifact(ctx context.Context, id string, format notation.Format) (*models.Composition, string, error) {
	var (
		comp *models.Composition
		err  error
	)
	if id == "" || id == "latest" {
		comp, err = c.store.Latest(ctx)
	} else {
		comp, err = c.store.Get(ctx, id)
	}
	if err != nil {
		return nil, "", err
	}

	path := comp.MusicXMLPath
	if format == notation.FormatMIDI {
		path = comp.MIDIPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("%w: artifact for composition %s", apperrors.ErrNotFound, comp.ID)
	}
	return comp, path, nil
}
