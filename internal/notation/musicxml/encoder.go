package musicxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/theory"
)

const (
	Version         = "3.0"
	DefaultSoftware = "Orchestra Music Generator"
	// referenceVelocity is written as dynamics="100"
	referenceVelocity = 90.0
)

// Encoder writes a score as a partwise MusicXML document
type Encoder struct {
	Software string
	Now      func() time.Time
}

// NewEncoder creates an encoder with default identification
func NewEncoder() *Encoder {
	return &Encoder{Software: DefaultSoftware, Now: time.Now}
}

// Encode writes the XML declaration followed by the document
func (e *Encoder) Encode(w io.Writer, s *models.Score) error {
	doc, err := e.build(s)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("%w: failed to write header: %v", apperrors.ErrExport, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: failed to encode MusicXML: %v", apperrors.ErrExport, err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrExport, err)
	}
	return nil
}

func (e *Encoder) build(s *models.Score) (*scorePartwise, error) {
	ts := s.Metadata.TimeSignature
	if ts.Beats <= 0 || ts.BeatType <= 0 {
		return nil, fmt.Errorf("%w: invalid time signature %s", apperrors.ErrExport, ts)
	}
	k, err := theory.ParseKey(s.Metadata.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExport, err)
	}

	doc := &scorePartwise{
		Version: Version,
		Identification: identification{
			Encoding: encoding{Software: e.Software},
		},
	}
	if s.Metadata.Title != "" {
		doc.Work = &work{Title: s.Metadata.Title}
		doc.MovementTitle = s.Metadata.Title
	}
	if s.Metadata.Composer != "" {
		doc.Identification.Creators = []creator{{Type: "composer", Value: s.Metadata.Composer}}
	}
	if e.Now != nil {
		doc.Identification.Encoding.Date = e.Now().Format("2006-01-02")
	}

	measures := s.Measures()
	if measures == 0 {
		measures = 1
	}
	w := partWriter{key: k, ts: ts, tempo: s.Metadata.Tempo, measures: measures}
	for i, p := range s.Parts {
		doc.PartList.ScoreParts = append(doc.PartList.ScoreParts, scorePartFor(p, i))
		doc.Parts = append(doc.Parts, w.write(p, i == 0))
	}
	return doc, nil
}

func scorePartFor(p models.Part, index int) scorePart {
	sp := scorePart{ID: p.ID, Name: p.Name}
	channel := models.MIDIChannel(index, p.Percussion) + 1

	if !p.Percussion {
		id := p.ID + "-I1"
		sp.Instruments = []scoreInstrument{{ID: id, Name: p.Instrument}}
		sp.MidiInstruments = []midiInstrument{{ID: id, Channel: channel, Program: p.Program + 1}}
		return sp
	}

	for _, pitch := range drumPitches(p.Events) {
		id := drumInstrumentID(p.ID, pitch)
		sp.Instruments = append(sp.Instruments, scoreInstrument{ID: id, Name: drumSoundFor(pitch).name})
		sp.MidiInstruments = append(sp.MidiInstruments, midiInstrument{ID: id, Channel: channel, Unpitched: pitch + 1})
	}
	return sp
}

type partWriter struct {
	key      theory.Key
	ts       models.TimeSignature
	tempo    int
	measures int
}

func (w partWriter) write(p models.Part, first bool) part {
	measureTicks := w.ts.MeasureTicks()
	divisions := w.ts.TicksPerQuarter()

	out := part{ID: p.ID, Measures: make([]measure, w.measures)}
	for i := range out.Measures {
		out.Measures[i].Number = i + 1
	}

	attrs := attributes{
		Divisions: divisions,
		Key:       &key{Fifths: w.key.Fifths(), Mode: string(w.key.Mode)},
		Time:      &timeSig{Beats: w.ts.Beats, BeatType: w.ts.BeatType},
		Clef:      clefFor(p),
	}
	out.Measures[0].Items = append(out.Measures[0].Items, attrs)
	if first && w.tempo > 0 {
		out.Measures[0].Items = append(out.Measures[0].Items, direction{
			Placement: "above",
			Type:      directionType{Metronome: &metronome{BeatUnit: "quarter", PerMinute: w.tempo}},
			Sound:     &sound{Tempo: float64(w.tempo)},
		})
	}

	// cursor is where the last written note or rest ended
	var cursor models.Ticks
	var prev *models.TiedEvent
	pieces := models.SplitAtMeasures(p.Events, measureTicks)
	for i := range pieces {
		e := &pieces[i]
		m := int(e.Onset / measureTicks)
		if m >= len(out.Measures) {
			break
		}
		items := &out.Measures[m].Items

		chord := !e.Rest && prev != nil && !prev.Rest && prev.Onset == e.Onset
		if !chord {
			if e.Onset < cursor {
				// overlapping events cannot be notated in a single voice
				continue
			}
			if e.Onset > cursor {
				w.fillRests(&out, cursor, e.Onset)
			}
		}

		if e.Dynamic == models.DynamicCrescendo && !chord {
			*items = append(*items, direction{Type: directionType{Wedge: &wedge{Type: "crescendo"}}})
		}
		*items = append(*items, w.note(p, e, chord, divisions))
		if e.Dynamic == models.DynamicCrescendo && !chord {
			*items = append(*items, direction{Type: directionType{Wedge: &wedge{Type: "stop"}}})
		}

		if !chord {
			cursor = e.End()
		}
		prev = e
	}
	w.fillRests(&out, cursor, models.Ticks(w.measures)*measureTicks)
	return out
}

// fillRests writes rests from start to end, one per measure
func (w partWriter) fillRests(out *part, start, end models.Ticks) {
	measureTicks := w.ts.MeasureTicks()
	divisions := w.ts.TicksPerQuarter()
	for start < end {
		barEnd := (start/measureTicks + 1) * measureTicks
		if barEnd > end {
			barEnd = end
		}
		m := int(start / measureTicks)
		rest := models.TiedEvent{Event: models.NewRest(start, barEnd-start)}
		out.Measures[m].Items = append(out.Measures[m].Items, w.note(models.Part{}, &rest, false, divisions))
		start = barEnd
	}
}

func (w partWriter) note(p models.Part, e *models.TiedEvent, chord bool, divisions int) note {
	n := note{Duration: int(e.Duration), Voice: "1"}
	noteType, dots := typeFor(e.Duration, models.Ticks(divisions))
	n.Type = noteType
	n.Dots = make([]empty, dots)

	if e.Rest {
		n.Rest = &empty{}
		return n
	}
	if chord {
		n.Chord = &empty{}
	}

	if p.Percussion {
		d := drumSoundFor(e.Pitch)
		n.Unpitched = &unpitched{DisplayStep: d.step, DisplayOctave: d.octave}
		n.Instrument = &instrument{ID: drumInstrumentID(p.ID, e.Pitch)}
	} else {
		step, alter, octave := w.key.Spell(e.Pitch)
		n.Pitch = &pitch{Step: step, Alter: float64(alter), Octave: octave}
	}
	n.Dynamics = strconv.FormatFloat(float64(e.Velocity)/referenceVelocity*100, 'f', 2, 64)

	var nt notations
	if e.TieStop {
		n.Ties = append(n.Ties, tie{Type: "stop"})
		nt.Tied = append(nt.Tied, tie{Type: "stop"})
	}
	if e.TieStart {
		n.Ties = append(n.Ties, tie{Type: "start"})
		nt.Tied = append(nt.Tied, tie{Type: "start"})
	}
	switch e.Articulation {
	case models.ArticulationStaccato:
		nt.Articulations = &articulations{Staccato: &empty{}}
	case models.ArticulationAccent:
		nt.Articulations = &articulations{Accent: &empty{}}
	}
	if len(nt.Tied) > 0 || nt.Articulations != nil {
		n.Notations = &nt
	}
	return n
}

var noteTypes = []string{"whole", "half", "quarter", "eighth", "16th", "32nd", "64th"}

// typeFor names a duration, with up to one dot. Durations with no
// notated equivalent return an empty type.
func typeFor(d, quarter models.Ticks) (string, int) {
	base := quarter * 4
	for _, name := range noteTypes {
		if base <= 0 {
			break
		}
		if d == base {
			return name, 0
		}
		if 2*d == 3*base {
			return name, 1
		}
		if base%2 != 0 {
			break
		}
		base /= 2
	}
	return "", 0
}

func clefFor(p models.Part) *clef {
	if p.Percussion {
		return &clef{Sign: "percussion"}
	}
	if (p.Min+p.Max)/2 < 60 {
		return &clef{Sign: "F", Line: 4}
	}
	return &clef{Sign: "G", Line: 2}
}
