package musicxml

import (
	"fmt"
	"sort"

	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

type drumSound struct {
	name   string
	step   string
	octave int
}

// drumSounds places General MIDI percussion on the five-line staff
var drumSounds = map[int]drumSound{
	35: {"Acoustic Bass Drum", "E", 4},
	36: {"Bass Drum", "F", 4},
	37: {"Side Stick", "C", 5},
	38: {"Snare Drum", "C", 5},
	39: {"Hand Clap", "D", 5},
	40: {"Electric Snare", "C", 5},
	41: {"Low Floor Tom", "A", 4},
	42: {"Closed Hi-Hat", "G", 5},
	44: {"Pedal Hi-Hat", "D", 4},
	45: {"Low Tom", "B", 4},
	46: {"Open Hi-Hat", "G", 5},
	48: {"High Mid Tom", "D", 5},
	49: {"Crash Cymbal", "A", 5},
	51: {"Ride Cymbal", "F", 5},
}

func drumSoundFor(pitch int) drumSound {
	if d, ok := drumSounds[pitch]; ok {
		return d
	}
	return drumSound{name: fmt.Sprintf("Percussion %d", pitch), step: "E", octave: 5}
}

func drumInstrumentID(partID string, pitch int) string {
	return fmt.Sprintf("%s-I%d", partID, pitch+1)
}

// drumPitches lists the distinct pitches played, ascending
func drumPitches(events []models.Event) []int {
	seen := map[int]bool{}
	var out []int
	for _, e := range events {
		if e.Rest || seen[e.Pitch] {
			continue
		}
		seen[e.Pitch] = true
		out = append(out, e.Pitch)
	}
	sort.Ints(out)
	return out
}
