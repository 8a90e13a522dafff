package musicxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
)

// Decode reads the pitched notes of the first part that has any. Ties are
// merged into single notes and chords keep every tone at the same start.
func Decode(r io.Reader) (*models.ImportedMelody, error) {
	var doc scorePartwiseIn
	dec := xml.NewDecoder(r)
	// other declared charsets are read as UTF-8
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: musicxml: %v", apperrors.ErrImportParse, err)
	}

	out := &models.ImportedMelody{}
	if doc.Work != nil && doc.Work.Title != "" {
		out.Title = doc.Work.Title
	} else {
		out.Title = doc.MovementTitle
	}

	for _, p := range doc.Parts {
		pr := partReader{out: out, divisions: 1}
		pr.read(p)
		if len(pr.notes) > 0 {
			out.Notes = pr.notes
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: musicxml: no pitched notes in %d parts", apperrors.ErrImportParse, len(doc.Parts))
}

// DecodeBytes is Decode over an in-memory document
func DecodeBytes(data []byte) (*models.ImportedMelody, error) {
	return Decode(bytes.NewReader(data))
}

type partReader struct {
	out       *models.ImportedMelody
	divisions int
	// cursor and lastStart are in quarter notes
	cursor    float64
	lastStart float64
	notes     []models.NoteEvent
	// open maps a pitch to the note its tie continues
	open map[int]int
}

func (r *partReader) read(p partIn) {
	r.open = map[int]int{}
	for _, m := range p.Measures {
		for _, el := range m.Elements {
			r.element(el)
		}
	}
}

func (r *partReader) quarters(divisions int) float64 {
	return float64(divisions) / float64(r.divisions)
}

func (r *partReader) element(el elementIn) {
	switch el.XMLName.Local {
	case "attributes":
		if el.Divisions > 0 {
			r.divisions = el.Divisions
		}
		if el.Time != nil && r.out.TimeSignature.Beats == 0 && el.Time.Beats > 0 {
			r.out.TimeSignature = models.TimeSignature{Beats: el.Time.Beats, BeatType: el.Time.BeatType}
		}
	case "direction":
		if el.Sound != nil {
			r.setTempo(el.Sound.Tempo)
		}
	case "sound":
		r.setTempo(el.Tempo)
	case "backup":
		r.cursor -= r.quarters(el.Duration)
		if r.cursor < 0 {
			r.cursor = 0
		}
	case "forward":
		r.cursor += r.quarters(el.Duration)
	case "note":
		r.note(el)
	}
}

func (r *partReader) setTempo(bpm float64) {
	if bpm > 0 && r.out.Tempo == 0 {
		r.out.Tempo = int(math.Round(bpm))
	}
}

func (r *partReader) note(el elementIn) {
	if el.Grace != nil {
		return
	}
	d := r.quarters(el.Duration)
	start := r.cursor
	if el.Chord != nil {
		start = r.lastStart
	} else {
		r.lastStart = r.cursor
		r.cursor += d
	}
	if el.Rest != nil || el.Pitch == nil {
		return
	}

	midi := theory.PitchFromStep(el.Pitch.Step, int(math.Round(el.Pitch.Alter)), el.Pitch.Octave)
	tieStart, tieStop := false, false
	for _, t := range el.Ties {
		switch t.Type {
		case "start":
			tieStart = true
		case "stop":
			tieStop = true
		}
	}

	if idx, ok := r.open[midi]; ok && tieStop {
		r.notes[idx].DurationBeats += d
		if !tieStart {
			delete(r.open, midi)
		}
		return
	}

	r.notes = append(r.notes, models.NoteEvent{
		MidiNoteNumber: midi,
		Velocity:       velocityFromDynamics(el.Dynamics),
		StartBeats:     start,
		DurationBeats:  d,
	})
	if tieStart {
		r.open[midi] = len(r.notes) - 1
	}
}

// velocityFromDynamics inverts the encoder's dynamics attribute. A missing
// or unreadable value gives 0 so the caller applies its default.
func velocityFromDynamics(s string) int {
	if s == "" {
		return 0
	}
	dyn, err := strconv.ParseFloat(s, 64)
	if err != nil || dyn <= 0 {
		return 0
	}
	v := int(math.Round(dyn / 100 * referenceVelocity))
	if v > 127 {
		return 127
	}
	if v < 1 {
		return 1
	}
	return v
}
