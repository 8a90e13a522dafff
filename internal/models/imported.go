package models

// ImportedMelody is what a notation decoder extracts from a file. Note
// starts and durations are measured in quarter notes.
type ImportedMelody struct {
	Title string
	Notes []NoteEvent
	// TimeSignature and Tempo are zero when the file declares none
	TimeSignature TimeSignature
	Tempo         int
}
