package score

import (
	"fmt"

	"github.com/Conceptual-Machines/orchestra-api/internal/harmony"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

const (
	DefaultComposer     = "SoundWave Studios"
	ClassicalTitle      = "Generated Orchestral Piece"
	EDMTitle            = "Generated EDM Track"
	DefaultTempo        = 120
	DefaultEDMTempo     = 128
	DefaultEDMKey       = "Cm"
	DefaultClassicalKey = "C"
)

// MelodyPart wraps melody events in a part for the ensemble's lead
func MelodyPart(lead harmony.Lead, events []models.Event) models.Part {
	return models.Part{
		Name:       lead.Name,
		Instrument: lead.Instrument,
		Program:    lead.Program,
		Min:        lead.Min,
		Max:        lead.Max,
		Events:     events,
	}
}

// Assemble packages the melody, its harmonized parts and any extra parts
// (drums) into a score. Parts keep their order and get ids P1..Pn.
func Assemble(meta models.Metadata, melody models.Part, harmonized []models.Part, extras ...models.Part) *models.Score {
	parts := make([]models.Part, 0, 1+len(harmonized)+len(extras))
	parts = append(parts, melody)
	parts = append(parts, harmonized...)
	parts = append(parts, extras...)

	for i := range parts {
		parts[i].ID = fmt.Sprintf("P%d", i+1)
	}

	return &models.Score{Metadata: meta, Parts: parts}
}

// DrumPart wraps a drum pattern in an unpitched kit part
func DrumPart(events []models.Event) models.Part {
	return models.Part{
		Name:       "Drum Kit",
		Instrument: "drumset",
		Percussion: true,
		Min:        0,
		Max:        127,
		Events:     events,
	}
}
