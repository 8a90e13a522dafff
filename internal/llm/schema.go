package llm

const (
	// MIDI note number constraints
	midiNoteNumberMin = 0
	midiNoteNumberMax = 127

	// Velocity constraints
	velocityMin = 1
	velocityMax = 127

	// Duration constraints
	durationBeatsMin = 0.25

	ContinuationSchemaName = "melody_continuation"
)

// GetContinuationSchema returns the JSON schema for a melody continuation:
// a short description plus the generated notes, starts relative to the
// end of the primer
func GetContinuationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"notes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"midiNoteNumber": map[string]any{"type": "integer", "minimum": midiNoteNumberMin, "maximum": midiNoteNumberMax},
						"velocity":       map[string]any{"type": "integer", "minimum": velocityMin, "maximum": velocityMax},
						"startBeats":     map[string]any{"type": "number", "minimum": 0},
						"durationBeats":  map[string]any{"type": "number", "minimum": durationBeatsMin},
					},
					"required":             []string{"midiNoteNumber", "velocity", "startBeats", "durationBeats"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"description", "notes"},
		"additionalProperties": false,
	}
}

// ContinuationOutputSchema wraps GetContinuationSchema for a request
func ContinuationOutputSchema() *OutputSchema {
	return &OutputSchema{
		Name:        ContinuationSchemaName,
		Description: "Notes continuing the given melody",
		Schema:      GetContinuationSchema(),
	}
}
