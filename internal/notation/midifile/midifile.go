package midifile

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Encoder writes a score as a format 1 Standard MIDI File: a conductor
// track followed by one track per part.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

type timedMessage struct {
	tick uint64
	off  bool
	msg  midi.Message
}

func (e *Encoder) Encode(w io.Writer, s *models.Score) error {
	ts := s.Metadata.TimeSignature
	resolution := ts.TicksPerQuarter()
	if ts.Beats <= 0 || resolution <= 0 || resolution > math.MaxUint16 {
		return fmt.Errorf("%w: invalid time signature %s", apperrors.ErrExport, ts)
	}

	f := smf.New()
	f.TimeFormat = smf.MetricTicks(resolution)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(s.Metadata.Title))
	conductor.Add(0, smf.MetaMeter(uint8(ts.Beats), uint8(ts.BeatType)))
	if s.Metadata.Tempo > 0 {
		conductor.Add(0, smf.MetaTempo(float64(s.Metadata.Tempo)))
	}
	conductor.Close(0)
	if err := f.Add(conductor); err != nil {
		return fmt.Errorf("%w: conductor track: %v", apperrors.ErrExport, err)
	}

	for i, p := range s.Parts {
		if err := f.Add(partTrack(p, i)); err != nil {
			return fmt.Errorf("%w: track %s: %v", apperrors.ErrExport, p.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to write MIDI: %v", apperrors.ErrExport, err)
	}
	return nil
}

func partTrack(p models.Part, index int) smf.Track {
	ch := uint8(models.MIDIChannel(index, p.Percussion))

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(p.Name))
	if !p.Percussion {
		tr.Add(0, midi.ProgramChange(ch, uint8(p.Program)))
	}

	msgs := make([]timedMessage, 0, 2*len(p.Events))
	for _, e := range p.Events {
		if e.Rest || e.Pitch < 0 || e.Pitch > 127 {
			continue
		}
		// a NoteOn with velocity 0 would read back as a NoteOff
		vel := e.Velocity
		if vel < 1 {
			vel = 1
		}
		if vel > 127 {
			vel = 127
		}
		msgs = append(msgs,
			timedMessage{tick: uint64(e.Onset), msg: midi.NoteOn(ch, uint8(e.Pitch), uint8(vel))},
			timedMessage{tick: uint64(e.End()), off: true, msg: midi.NoteOff(ch, uint8(e.Pitch))},
		)
	}
	// releases sort before attacks on the same tick so repeated pitches retrigger
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var last uint64
	for _, m := range msgs {
		tr.Add(uint32(m.tick-last), m.msg)
		last = m.tick
	}
	tr.Close(0)
	return tr
}

type pending struct {
	start    uint64
	velocity uint8
}

// Decode reads the notes of the first non-percussion track that has any.
// Starts and durations come back in quarter notes.
func Decode(r io.Reader) (melody *models.ImportedMelody, err error) {
	// smf can panic on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			melody = nil
			err = fmt.Errorf("%w: midi: %v", apperrors.ErrImportParse, rec)
		}
	}()

	f, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: midi: %v", apperrors.ErrImportParse, err)
	}
	tf, ok := f.TimeFormat.(smf.MetricTicks)
	if !ok || tf.Resolution() == 0 {
		return nil, fmt.Errorf("%w: midi: only metric time format is supported", apperrors.ErrImportParse)
	}
	resolution := float64(tf.Resolution())

	out := &models.ImportedMelody{}
	for _, track := range f.Tracks {
		notes := readTrack(track, resolution, out)
		if len(notes) > 0 && out.Notes == nil {
			out.Notes = notes
		}
	}
	if len(out.Notes) == 0 {
		return nil, fmt.Errorf("%w: midi: no melodic notes in %d tracks", apperrors.ErrImportParse, len(f.Tracks))
	}
	return out, nil
}

// DecodeBytes is Decode over an in-memory file
func DecodeBytes(data []byte) (*models.ImportedMelody, error) {
	return Decode(bytes.NewReader(data))
}

// readTrack collects the track's notes and fills in tempo, meter and title
// the first time they are seen
func readTrack(track smf.Track, resolution float64, out *models.ImportedMelody) []models.NoteEvent {
	var notes []models.NoteEvent
	open := map[[2]uint8]pending{}
	var abs uint64

	end := func(ch, key uint8) {
		k := [2]uint8{ch, key}
		p, ok := open[k]
		if !ok {
			return
		}
		delete(open, k)
		notes = append(notes, models.NoteEvent{
			MidiNoteNumber: int(key),
			Velocity:       int(p.velocity),
			StartBeats:     float64(p.start) / resolution,
			DurationBeats:  float64(abs-p.start) / resolution,
		})
	}

	for _, ev := range track {
		abs += uint64(ev.Delta)

		var ch, key, vel, num, denom uint8
		var bpm float64
		var name string
		switch {
		case ev.Message.GetMetaTempo(&bpm):
			if out.Tempo == 0 && bpm > 0 {
				out.Tempo = int(math.Round(bpm))
			}
		case ev.Message.GetMetaMeter(&num, &denom):
			if out.TimeSignature.Beats == 0 && num > 0 {
				out.TimeSignature = models.TimeSignature{Beats: int(num), BeatType: int(denom)}
			}
		case ev.Message.GetMetaTrackName(&name):
			if out.Title == "" {
				out.Title = name
			}
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			if ch == models.PercussionChannel {
				continue
			}
			if vel == 0 {
				end(ch, key)
				continue
			}
			// a retrigger closes the sounding note first
			end(ch, key)
			open[[2]uint8{ch, key}] = pending{start: abs, velocity: vel}
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			end(ch, key)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartBeats < notes[j].StartBeats
	})
	return notes
}
