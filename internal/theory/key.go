package theory

import (
	"fmt"
	"strings"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
)

// Mode of a key
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

const (
	semitonesPerOctave = 12
	degreesPerScale    = 7
	maxAccidentals     = 7
	// scales are rooted in octave 4 (C4 = 60)
	scaleOctave = 4
)

var (
	majorSteps = [degreesPerScale]int{0, 2, 4, 5, 7, 9, 11}
	minorSteps = [degreesPerScale]int{0, 2, 3, 5, 7, 8, 10}

	letterSemitones = map[byte]int{
		'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
	}
	naturalLetters = "CDEFGAB"
	sharpOrder     = "FCGDAEB"
	flatOrder      = "BEADGCF"

	sharpNames = [semitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [semitonesPerOctave]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// Key is a tonic plus mode. Its signature decides how every pitch is spelled.
type Key struct {
	Label  string
	Root   int // pitch class 0-11
	Mode   Mode
	fifths int
}

// ParseKey parses labels like "C", "G", "F#m", "Bbm", "Eb minor"
func ParseKey(label string) (Key, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty label", apperrors.ErrInvalidKey)
	}

	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	root, ok := letterSemitones[letter]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, label)
	}

	rest := s[1:]
	accidental := 0
	if strings.HasPrefix(rest, "#") {
		accidental = 1
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "b") {
		accidental = -1
		rest = rest[1:]
	}
	root = mod12(root + accidental)

	mode := Major
	switch strings.ToLower(strings.TrimSpace(rest)) {
	case "", "maj", "major":
	case "m", "min", "minor":
		mode = Minor
	default:
		return Key{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, label)
	}

	return Key{Label: s, Root: root, Mode: mode, fifths: signature(root, mode, accidental)}, nil
}

// signature places the key on the circle of fifths. The label's accidental
// picks the side, so C# is 7 sharps and Cb is 7 flats. Labels that would
// need more than 7 (G#, Fb) take the enharmonic signature.
func signature(root int, mode Mode, accidental int) int {
	if mode == Minor {
		root = mod12(root + 3) // relative major
	}
	fifths := mod12(root * 7)
	if fifths > 6 {
		fifths -= semitonesPerOctave
	}
	switch {
	case accidental > 0 && fifths < 0 && fifths+semitonesPerOctave <= maxAccidentals:
		fifths += semitonesPerOctave
	case accidental < 0 && fifths > 0 && fifths-semitonesPerOctave >= -maxAccidentals:
		fifths -= semitonesPerOctave
	}
	return fifths
}

// MustParseKey panics on an invalid label. Intended for constants and tests.
func MustParseKey(label string) Key {
	k, err := ParseKey(label)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	name := k.PitchClassName(k.Root)
	if k.Mode == Minor {
		return name + "m"
	}
	return name
}

// Fifths is the key signature as a count of sharps (positive) or flats (negative)
func (k Key) Fifths() int {
	return k.fifths
}

// diatonicName spells pc with the letter the signature gives it, if pc
// belongs to the key
func (k Key) diatonicName(pc int) (string, bool) {
	for i := 0; i < len(naturalLetters); i++ {
		l := naturalLetters[i]
		alter := 0
		switch {
		case k.fifths > 0 && strings.IndexByte(sharpOrder[:k.fifths], l) >= 0:
			alter = 1
		case k.fifths < 0 && strings.IndexByte(flatOrder[:-k.fifths], l) >= 0:
			alter = -1
		}
		if mod12(letterSemitones[l]+alter) != pc {
			continue
		}
		switch alter {
		case 1:
			return string(l) + "#", true
		case -1:
			return string(l) + "b", true
		}
		return string(l), true
	}
	return "", false
}

// PitchClassName spells a pitch class: scale tones follow the signature,
// chromatic tones use sharps in sharp keys and flats in flat keys
func (k Key) PitchClassName(pc int) string {
	pc = mod12(pc)
	if name, ok := k.diatonicName(pc); ok {
		return name
	}
	if k.SpellsFlat() {
		return flatNames[pc]
	}
	return sharpNames[pc]
}

// Spell splits a MIDI number into step, alter and octave as written in
// this key. B#3 and Cb4 keep the octave of their letter.
func (k Key) Spell(pitch int) (step string, alter, octave int) {
	name, ok := k.diatonicName(mod12(pitch))
	if !ok {
		return SpellPitch(pitch, k.SpellsFlat())
	}
	step = name[:1]
	switch {
	case strings.HasSuffix(name, "#"):
		alter = 1
	case strings.HasSuffix(name, "b"):
		alter = -1
	}
	octave = (pitch-alter-letterSemitones[step[0]])/semitonesPerOctave - 1
	return step, alter, octave
}

func mod12(n int) int {
	return ((n % semitonesPerOctave) + semitonesPerOctave) % semitonesPerOctave
}
