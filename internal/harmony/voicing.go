package harmony

const (
	octave = 12
	// leaps wider than a perfect fifth trigger smoothing; a fifth itself is
	// kept even though its octave shift lands closer
	maxLeap = 7
)

// ClampToRange moves a pitch by whole octaves until it sits in [lo, hi]
func ClampToRange(pitch, lo, hi int) int {
	for pitch < lo {
		pitch += octave
	}
	for pitch > hi {
		pitch -= octave
	}
	return pitch
}

// Place picks the sounding pitch for one voice. The candidate is clamped
// into range; then, if there is a previous note more than a fifth away,
// the octave shift toward it is taken when it stays in range and is
// strictly closer.
func Place(candidate, lo, hi, prev int, hasPrev bool) int {
	pitch := ClampToRange(candidate, lo, hi)
	if !hasPrev {
		return pitch
	}

	dist := abs(pitch - prev)
	if dist <= maxLeap {
		return pitch
	}

	alt := pitch - octave
	if prev > pitch {
		alt = pitch + octave
	}
	if alt >= lo && alt <= hi && abs(alt-prev) < dist {
		return alt
	}
	return pitch
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
