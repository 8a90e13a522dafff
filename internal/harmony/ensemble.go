package harmony

// Lead is the instrument carrying the melody
type Lead struct {
	Name       string
	Instrument string
	Program    int
	Min        int
	Max        int
}

// Ensemble is a lead plus the voices harmonized under it
type Ensemble struct {
	Lead   Lead
	Voices []Voice
}

// General MIDI programs, 0-based
const (
	programViolin       = 40
	programViola        = 41
	programCello        = 42
	programContrabass   = 43
	programSawLead      = 81
	programWarmPad      = 89
	programSynthBass    = 38
	programSynthBass2   = 39
	programPluckedSynth = 84
)

// StringQuartetPlusBass is the orchestral ensemble for the ABA form
var StringQuartetPlusBass = Ensemble{
	Lead: Lead{Name: "Violin I", Instrument: "violin", Program: programViolin, Min: 55, Max: 103},
	Voices: []Voice{
		{Name: "Violin II", Instrument: "violin", Program: programViolin, Role: RoleThird, Min: 55, Max: 96},
		{Name: "Viola", Instrument: "viola", Program: programViola, Role: RoleFifth, Min: 48, Max: 88},
		{Name: "Violoncello", Instrument: "violoncello", Program: programCello, Role: RoleOctaveBelow, Min: 36, Max: 76},
		{Name: "Contrabass", Instrument: "contrabass", Program: programContrabass, Role: RoleTwoOctavesBelow, Min: 28, Max: 67},
	},
}

// SynthStack is the electronic ensemble for the EDM form
var SynthStack = Ensemble{
	Lead: Lead{Name: "Synth Lead", Instrument: "synthesizer", Program: programSawLead, Min: 48, Max: 96},
	Voices: []Voice{
		{Name: "Synth Pad", Instrument: "synthesizer", Program: programWarmPad, Role: RoleThird, Min: 48, Max: 84},
		{Name: "Synth Pluck", Instrument: "synthesizer", Program: programPluckedSynth, Role: RoleFifth, Min: 48, Max: 84},
		{Name: "Synth Bass", Instrument: "synthesizer", Program: programSynthBass, Role: RoleOctaveBelow, Min: 28, Max: 55},
		{Name: "Sub Bass", Instrument: "synthesizer", Program: programSynthBass2, Role: RoleTwoOctavesBelow, Min: 24, Max: 48},
	},
}
