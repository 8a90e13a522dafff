package notation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation/midifile"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation/musicxml"
)

// MusicXMLProlog is written ahead of every MusicXML document body
const MusicXMLProlog = `<?xml version="1.0" encoding='UTF-8' standalone='no' ?>` + "\n" +
	`<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

const (
	MusicXMLContentType = "application/vnd.recordare.musicxml+xml"
	MIDIContentType     = "audio/midi"
)

// Encoder renders a score into some notation format
type Encoder interface {
	Encode(w io.Writer, s *models.Score) error
}

// Exporter writes encoded scores to disk. When Prolog is set, the
// encoder's own first line is dropped if it is an XML declaration and the
// prolog is written in its place.
type Exporter struct {
	Encoder Encoder
	Prolog  string
}

// NewMusicXMLExporter exports MusicXML with the partwise prolog
func NewMusicXMLExporter() *Exporter {
	return &Exporter{Encoder: musicxml.NewEncoder(), Prolog: MusicXMLProlog}
}

// NewMIDIExporter exports Standard MIDI Files
func NewMIDIExporter() *Exporter {
	return &Exporter{Encoder: midifile.NewEncoder()}
}

// Render encodes the score in memory, prolog included
func (e *Exporter) Render(s *models.Score) ([]byte, error) {
	var body bytes.Buffer
	if err := e.Encoder.Encode(&body, s); err != nil {
		if errors.Is(err, apperrors.ErrExport) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExport, err)
	}
	if e.Prolog == "" {
		return body.Bytes(), nil
	}

	var out bytes.Buffer
	out.WriteString(e.Prolog)
	out.WriteString("\n")
	out.Write(stripDeclaration(body.Bytes()))
	return out.Bytes(), nil
}

// stripDeclaration drops the first line if it is an XML declaration
func stripDeclaration(body []byte) []byte {
	trimmed := bytes.TrimLeft(body, " \t\r\n\ufeff")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return body
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[i+1:]
	}
	return nil
}

// Export writes the score to dest. The content goes to a temporary file
// in the same directory which is synced and renamed over dest, so dest
// never holds a partial document.
func (e *Exporter) Export(s *models.Score, dest string) error {
	data, err := e.Render(s)
	if err != nil {
		return err
	}
	return WriteFileAtomic(dest, data)
}

// WriteFileAtomic writes data to path through a temp file and rename, then
// checks the result is a non-empty file
func WriteFileAtomic(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: nothing to write to %s", apperrors.ErrExport, path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %v", apperrors.ErrExport, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", apperrors.ErrExport, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", apperrors.ErrExport, tmpName, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", apperrors.ErrExport, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", apperrors.ErrExport, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", apperrors.ErrExport, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", apperrors.ErrExport, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", apperrors.ErrExport, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrExport, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", apperrors.ErrExport, path)
	}
	return nil
}

// Format is an importable file format
type Format string

const (
	FormatMusicXML Format = "musicxml"
	FormatMIDI     Format = "midi"
)

// FormatForName picks the format from a file extension
func FormatForName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".musicxml":
		return FormatMusicXML, nil
	case ".mid", ".midi":
		return FormatMIDI, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q (allowed: .xml, .musicxml, .mid, .midi)", apperrors.ErrImportParse, filepath.Ext(name))
	}
}

// Import reads a melody from a MusicXML or MIDI file
func Import(path string) (*models.ImportedMelody, error) {
	format, err := FormatForName(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImportParse, err)
	}
	return decode(format, data)
}

// ImportBytes reads a melody from uploaded content, using name for the format
func ImportBytes(name string, data []byte) (*models.ImportedMelody, error) {
	format, err := FormatForName(name)
	if err != nil {
		return nil, err
	}
	return decode(format, data)
}

func decode(format Format, data []byte) (*models.ImportedMelody, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperrors.ErrImportParse)
	}
	if format == FormatMIDI {
		return midifile.DecodeBytes(data)
	}
	return musicxml.DecodeBytes(data)
}
