package theory

import (
	"fmt"
	"strings"
)

// Quality of the triad built on a scale degree
type Quality string

const (
	QualityMajor      Quality = "major"
	QualityMinor      Quality = "minor"
	QualityDiminished Quality = "diminished"
)

// Triad intervals above the chord root
var qualityIntervals = map[Quality][3]int{
	QualityMajor:      {0, 4, 7},
	QualityMinor:      {0, 3, 7},
	QualityDiminished: {0, 3, 6},
}

// QualityForDegree classifies a scale degree: 1, 4, 5 are major;
// 2, 3, 6 are minor; 7 is diminished.
func QualityForDegree(degree int) Quality {
	switch degree {
	case 2, 3, 6:
		return QualityMinor
	case 7:
		return QualityDiminished
	default:
		return QualityMajor
	}
}

// Intervals returns the [root, third, fifth] semitone offsets
func (q Quality) Intervals() [3]int {
	return qualityIntervals[q]
}

var noteSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// NoteNameToMIDI converts a note name like "C4" or "F#3" to a MIDI number.
// C4 = 60.
func NoteNameToMIDI(noteName string) (int, error) {
	if len(noteName) < 2 {
		return 0, fmt.Errorf("note name too short: %s", noteName)
	}

	letter := strings.ToUpper(noteName[:1])
	semitone, ok := noteSemitones[letter]
	if !ok {
		return 0, fmt.Errorf("invalid note letter: %s", letter)
	}

	idx := 1
	switch noteName[idx] {
	case '#':
		semitone++
		idx++
	case 'b':
		semitone--
		idx++
	}
	if idx >= len(noteName) {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	var octave int
	if _, err := fmt.Sscanf(noteName[idx:], "%d", &octave); err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}

	return (octave+1)*semitonesPerOctave + semitone, nil
}

// PitchFromStep converts a MusicXML-style step/alter/octave to a MIDI number
func PitchFromStep(step string, alter, octave int) int {
	return (octave+1)*semitonesPerOctave + noteSemitones[strings.ToUpper(step)] + alter
}

// SpellPitch splits a MIDI number into step, alter and octave, spelling
// black keys as sharps unless flats is set.
func SpellPitch(pitch int, flats bool) (step string, alter, octave int) {
	pc := mod12(pitch)
	octave = (pitch-pc)/semitonesPerOctave - 1
	name := sharpNames[pc]
	if flats {
		name = flatNames[pc]
	}
	step = name[:1]
	switch {
	case strings.HasSuffix(name, "#"):
		alter = 1
	case strings.HasSuffix(name, "b"):
		alter = -1
	}
	return step, alter, octave
}

// SpellsFlat reports whether the key signature has flats
func (k Key) SpellsFlat() bool {
	return k.fifths < 0
}
