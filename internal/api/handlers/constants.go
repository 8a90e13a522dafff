package handlers

const (
	// Uploaded melodies larger than this are rejected
	maxUploadBytes = 10 << 20

	formatQueryMIDI = "midi"

	legacyDownloadName = "generated_music.xml"
)
