package theory

// Scale is the ordered diatonic pitch set of a key. Pitches[d-1] is degree d.
type Scale struct {
	Key     Key
	Pitches [degreesPerScale]int
	degrees map[string]int
}

// NewScale builds the 7-note scale for a key, rooted in octave 4
func NewScale(k Key) Scale {
	steps := majorSteps
	if k.Mode == Minor {
		steps = minorSteps
	}

	base := (scaleOctave+1)*semitonesPerOctave + k.Root
	s := Scale{Key: k, degrees: make(map[string]int, degreesPerScale)}
	for i, step := range steps {
		s.Pitches[i] = base + step
		s.degrees[k.PitchClassName(base+step)] = i + 1
	}
	return s
}

// ScaleForKey parses a key label and builds its scale
func ScaleForKey(label string) (Scale, error) {
	k, err := ParseKey(label)
	if err != nil {
		return Scale{}, err
	}
	return NewScale(k), nil
}

// Degree returns the 1-based degree of any pitch, in any octave.
// Chromatic pitches report degree 1.
func (s Scale) Degree(pitch int) int {
	pc := mod12(pitch)
	for i, p := range s.Pitches {
		if mod12(p) == pc {
			return i + 1
		}
	}
	return 1
}

// DegreeOfName looks a pitch name ("F#", "Bb") up in the scale.
// Names outside the scale report degree 1.
func (s Scale) DegreeOfName(name string) int {
	if d, ok := s.degrees[name]; ok {
		return d
	}
	return 1
}

// Names returns the spelled pitch names in degree order
func (s Scale) Names() []string {
	names := make([]string, len(s.Pitches))
	for i, p := range s.Pitches {
		names[i] = s.Key.PitchClassName(p)
	}
	return names
}
