package models

// NoteEvent is the beat-based note format exchanged with continuation
// backends and produced by the notation importers.
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
}

// ContinuationOutput is the structured output expected from an LLM backend
type ContinuationOutput struct {
	Description string      `json:"description"`
	Notes       []NoteEvent `json:"notes"`
}
