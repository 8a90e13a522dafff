package compose

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

// DefaultVelocity is used for imported or generated notes that carry none
const DefaultVelocity = 90

// ToNoteEvents converts pitched events to the beat-based sequence form.
// Rests are dropped; their time is implied by the gaps.
func ToNoteEvents(events []models.Event, offset models.Ticks) []models.NoteEvent {
	notes := make([]models.NoteEvent, 0, len(events))
	for _, e := range events {
		if e.Rest {
			continue
		}
		notes = append(notes, models.NoteEvent{
			MidiNoteNumber: e.Pitch,
			Velocity:       e.Velocity,
			StartBeats:     (e.Onset - offset).Beats(),
			DurationBeats:  e.Duration.Beats(),
		})
	}
	return notes
}

// quantizeBeats snaps a beat value to the sixteenth-note grid
func quantizeBeats(beats float64) models.Ticks {
	return models.Ticks(math.Round(beats*4)) * sixteenth
}

// FromNoteEvents turns an arbitrary note sequence into a monophonic line
// that exactly fills window ticks. Starts and durations are quantized to
// sixteenths, notes outside the window are dropped, an earlier note is cut
// short when the next one starts, gaps become rests and the last note is
// clamped to the window. The second return reports whether any note
// survived.
func FromNoteEvents(notes []models.NoteEvent, window models.Ticks) ([]models.Event, bool) {
	sorted := make([]models.NoteEvent, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartBeats < sorted[j].StartBeats
	})

	var out []models.Event
	var cursor models.Ticks
	pitched := false
	for _, n := range sorted {
		start := quantizeBeats(n.StartBeats)
		if start < 0 || start >= window || n.MidiNoteNumber < 0 || n.MidiNoteNumber > 127 {
			continue
		}
		d := quantizeBeats(n.DurationBeats)
		if d <= 0 {
			d = sixteenth
		}

		if start < cursor {
			last := &out[len(out)-1]
			if last.Rest || start <= last.Onset {
				// chord tone or duplicate start, keep the first note
				continue
			}
			last.Duration = start - last.Onset
			cursor = start
		}
		if start > cursor {
			out = appendRest(out, cursor, start-cursor)
		}
		if start+d > window {
			d = window - start
		}

		velocity := n.Velocity
		if velocity <= 0 {
			velocity = DefaultVelocity
		}
		out = append(out, models.Event{
			Onset:    start,
			Duration: d,
			Pitch:    n.MidiNoteNumber,
			Velocity: clampVelocity(velocity),
		})
		cursor = start + d
		pitched = true
	}

	if cursor < window {
		out = appendRest(out, cursor, window-cursor)
	}
	return out, pitched
}

// MelodyFromImport reduces imported notes to a monophonic melody in the
// time signature's beats, padded with a rest to the end of the last
// measure. Imported starts and durations are in quarter notes.
func MelodyFromImport(notes []models.NoteEvent, ts models.TimeSignature) ([]models.Event, int, error) {
	scale := float64(ts.BeatType) / 4
	converted := make([]models.NoteEvent, len(notes))
	var end float64
	for i, n := range notes {
		n.StartBeats *= scale
		n.DurationBeats *= scale
		converted[i] = n
		if e := n.StartBeats + n.DurationBeats; e > end {
			end = e
		}
	}

	measureTicks := ts.MeasureTicks()
	endTicks := quantizeBeats(end)
	measures := int(endTicks / measureTicks)
	if endTicks%measureTicks != 0 {
		measures++
	}
	if measures == 0 {
		return nil, 0, fmt.Errorf("%w: imported file has no notes", apperrors.ErrEmptyMelody)
	}

	events, ok := FromNoteEvents(converted, models.Ticks(measures)*measureTicks)
	if !ok {
		return nil, 0, fmt.Errorf("%w: imported file has no usable notes", apperrors.ErrEmptyMelody)
	}
	return events, measures, nil
}
