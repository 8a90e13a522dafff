package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Ticks is a position or length in the score. One beat of the time
// signature is TicksPerBeat ticks, so every duration in the catalogs
// (down to a 64th of a beat) is an exact integer.
type Ticks int

const TicksPerBeat Ticks = 480

// Beats converts ticks to (possibly fractional) beats
func (t Ticks) Beats() float64 {
	return float64(t) / float64(TicksPerBeat)
}

// BeatsToTicks converts a beat value to ticks, rounding to the nearest tick
func BeatsToTicks(beats float64) Ticks {
	if beats < 0 {
		return -BeatsToTicks(-beats)
	}
	return Ticks(beats*float64(TicksPerBeat) + 0.5)
}

// Articulation tags
type Articulation string

const (
	ArticulationNone     Articulation = ""
	ArticulationStaccato Articulation = "staccato"
	ArticulationAccent   Articulation = "accent"
)

// Dynamic tags
type Dynamic string

const (
	DynamicNone      Dynamic = ""
	DynamicCrescendo Dynamic = "crescendo"
)

// Event is either a note or a rest. Rests carry no pitch or velocity.
type Event struct {
	Onset        Ticks        `json:"onset"`
	Duration     Ticks        `json:"duration"`
	Pitch        int          `json:"pitch,omitempty"`
	Velocity     int          `json:"velocity,omitempty"`
	Rest         bool         `json:"rest,omitempty"`
	Articulation Articulation `json:"articulation,omitempty"`
	Dynamic      Dynamic      `json:"dynamic,omitempty"`
}

// NewRest creates a rest event
func NewRest(onset, duration Ticks) Event {
	return Event{Onset: onset, Duration: duration, Rest: true}
}

// End returns the tick right after the event
func (e Event) End() Ticks {
	return e.Onset + e.Duration
}

// TotalDuration sums event durations
func TotalDuration(events []Event) Ticks {
	var total Ticks
	for _, e := range events {
		total += e.Duration
	}
	return total
}

// Shift returns a copy of events with every onset moved by offset
func Shift(events []Event, offset Ticks) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.Onset += offset
		out[i] = e
	}
	return out
}

// TimeSignature is beats per measure over the beat unit
type TimeSignature struct {
	Beats    int `json:"beats"`
	BeatType int `json:"beat_type"`
}

// CommonTime is 4/4
var CommonTime = TimeSignature{Beats: 4, BeatType: 4}

// ParseTimeSignature parses "3/4" style labels
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return TimeSignature{}, fmt.Errorf("time signature %q: expected N/D", s)
	}
	beats, err := strconv.Atoi(parts[0])
	if err != nil || beats <= 0 {
		return TimeSignature{}, fmt.Errorf("time signature %q: bad numerator", s)
	}
	beatType, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeSignature{}, fmt.Errorf("time signature %q: bad denominator", s)
	}
	switch beatType {
	case 1, 2, 4, 8, 16:
	default:
		return TimeSignature{}, fmt.Errorf("time signature %q: denominator must be a power of two up to 16", s)
	}
	return TimeSignature{Beats: beats, BeatType: beatType}, nil
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.BeatType)
}

// MeasureTicks is the length of one measure
func (ts TimeSignature) MeasureTicks() Ticks {
	return Ticks(ts.Beats) * TicksPerBeat
}

// TicksPerQuarter is the number of ticks in a quarter note under this signature
func (ts TimeSignature) TicksPerQuarter() int {
	return int(TicksPerBeat) * ts.BeatType / 4
}

// SectionType names a section of a form
type SectionType string

const (
	SectionA       SectionType = "A"
	SectionB       SectionType = "B"
	SectionGroove  SectionType = "groove"
	SectionTiled   SectionType = "tiled"
	SectionBuildup SectionType = "buildup"
)

// Section is a typed run of events with a declared length in measures.
// Onsets are relative to the start of the section.
type Section struct {
	Type     SectionType `json:"type"`
	Measures int         `json:"measures"`
	Events   []Event     `json:"events"`
}

// Part is one instrument line in the score
type Part struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Instrument string  `json:"instrument"`
	Program    int     `json:"program"`    // General MIDI program, 0-based
	Percussion bool    `json:"percussion"` // rendered on MIDI channel 10
	Min        int     `json:"min"`        // lowest legal pitch
	Max        int     `json:"max"`        // highest legal pitch
	Events     []Event `json:"events"`
}

// Metadata describes the score as a whole
type Metadata struct {
	Title         string        `json:"title"`
	Composer      string        `json:"composer"`
	Key           string        `json:"key"`
	Tempo         int           `json:"tempo"`
	TimeSignature TimeSignature `json:"time_signature"`
}

// Score is the finished composition handed to exporters
type Score struct {
	Metadata Metadata `json:"metadata"`
	Parts    []Part   `json:"parts"`
}

// Measures returns how many whole measures the longest part spans
func (s *Score) Measures() int {
	measure := s.Metadata.TimeSignature.MeasureTicks()
	if measure <= 0 {
		return 0
	}
	var longest Ticks
	for _, p := range s.Parts {
		for _, e := range p.Events {
			if e.End() > longest {
				longest = e.End()
			}
		}
	}
	n := int(longest / measure)
	if longest%measure != 0 {
		n++
	}
	return n
}

// PercussionChannel is General MIDI channel 10, 0-based
const PercussionChannel = 9

// MIDIChannel returns the 0-based channel for the part at index.
// Melodic parts skip the percussion channel and wrap after fifteen.
func MIDIChannel(index int, percussion bool) int {
	if percussion {
		return PercussionChannel
	}
	ch := index % 15
	if ch >= PercussionChannel {
		ch++
	}
	return ch
}
