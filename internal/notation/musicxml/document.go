package musicxml

import "encoding/xml"

// Partwise document elements. Only what the encoder writes and the
// decoder reads is modelled.

type scorePartwise struct {
	XMLName        xml.Name       `xml:"score-partwise"`
	Version        string         `xml:"version,attr"`
	Work           *work          `xml:"work"`
	MovementTitle  string         `xml:"movement-title,omitempty"`
	Identification identification `xml:"identification"`
	PartList       partList       `xml:"part-list"`
	Parts          []part         `xml:"part"`
}

type work struct {
	Title string `xml:"work-title"`
}

type identification struct {
	Creators []creator `xml:"creator"`
	Encoding encoding  `xml:"encoding"`
}

type creator struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type encoding struct {
	Software string `xml:"software"`
	Date     string `xml:"encoding-date,omitempty"`
}

type partList struct {
	ScoreParts []scorePart `xml:"score-part"`
}

type scorePart struct {
	ID              string            `xml:"id,attr"`
	Name            string            `xml:"part-name"`
	Instruments     []scoreInstrument `xml:"score-instrument"`
	MidiInstruments []midiInstrument  `xml:"midi-instrument"`
}

type scoreInstrument struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"instrument-name"`
}

type midiInstrument struct {
	ID        string `xml:"id,attr"`
	Channel   int    `xml:"midi-channel"`
	Program   int    `xml:"midi-program,omitempty"`
	Unpitched int    `xml:"midi-unpitched,omitempty"`
}

type part struct {
	ID       string    `xml:"id,attr"`
	Measures []measure `xml:"measure"`
}

// measure keeps attributes, directions and notes in document order
type measure struct {
	Number int   `xml:"number,attr"`
	Items  []any `xml:",any"`
}

type attributes struct {
	XMLName   xml.Name `xml:"attributes"`
	Divisions int      `xml:"divisions"`
	Key       *key     `xml:"key"`
	Time      *timeSig `xml:"time"`
	Clef      *clef    `xml:"clef"`
}

type key struct {
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode"`
}

type timeSig struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type clef struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line,omitempty"`
}

type direction struct {
	XMLName   xml.Name      `xml:"direction"`
	Placement string        `xml:"placement,attr,omitempty"`
	Type      directionType `xml:"direction-type"`
	Sound     *sound        `xml:"sound"`
}

type directionType struct {
	Metronome *metronome `xml:"metronome"`
	Wedge     *wedge     `xml:"wedge"`
}

type metronome struct {
	BeatUnit  string `xml:"beat-unit"`
	PerMinute int    `xml:"per-minute"`
}

type wedge struct {
	Type string `xml:"type,attr"`
}

type sound struct {
	Tempo float64 `xml:"tempo,attr,omitempty"`
}

type empty struct{}

type note struct {
	XMLName    xml.Name    `xml:"note"`
	Dynamics   string      `xml:"dynamics,attr,omitempty"`
	Grace      *empty      `xml:"grace"`
	Chord      *empty      `xml:"chord"`
	Pitch      *pitch      `xml:"pitch"`
	Unpitched  *unpitched  `xml:"unpitched"`
	Rest       *empty      `xml:"rest"`
	Duration   int         `xml:"duration"`
	Ties       []tie       `xml:"tie"`
	Instrument *instrument `xml:"instrument"`
	Voice      string      `xml:"voice,omitempty"`
	Type       string      `xml:"type,omitempty"`
	Dots       []empty     `xml:"dot"`
	Notations  *notations  `xml:"notations"`
}

type pitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter,omitempty"`
	Octave int     `xml:"octave"`
}

type unpitched struct {
	DisplayStep   string `xml:"display-step"`
	DisplayOctave int    `xml:"display-octave"`
}

type tie struct {
	Type string `xml:"type,attr"`
}

type instrument struct {
	ID string `xml:"id,attr"`
}

type notations struct {
	Tied          []tie          `xml:"tied"`
	Articulations *articulations `xml:"articulations"`
}

type articulations struct {
	Accent   *empty `xml:"accent"`
	Staccato *empty `xml:"staccato"`
}

// Decoding side. A measure's children are read as one generic element
// type so their order survives.

type scorePartwiseIn struct {
	XMLName       xml.Name `xml:"score-partwise"`
	Work          *work    `xml:"work"`
	MovementTitle string   `xml:"movement-title"`
	Parts         []partIn `xml:"part"`
}

type partIn struct {
	ID       string      `xml:"id,attr"`
	Measures []measureIn `xml:"measure"`
}

type measureIn struct {
	Number   string      `xml:"number,attr"`
	Elements []elementIn `xml:",any"`
}

type elementIn struct {
	XMLName xml.Name

	// attributes
	Divisions int      `xml:"divisions"`
	Time      *timeSig `xml:"time"`

	// direction, or a bare sound element
	Sound *sound  `xml:"sound"`
	Tempo float64 `xml:"tempo,attr"`

	// note, backup, forward
	Dynamics string `xml:"dynamics,attr"`
	Grace    *empty `xml:"grace"`
	Chord    *empty `xml:"chord"`
	Pitch    *pitch `xml:"pitch"`
	Rest     *empty `xml:"rest"`
	Duration int    `xml:"duration"`
	Ties     []tie  `xml:"tie"`
}
