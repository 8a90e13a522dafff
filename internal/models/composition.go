package models

import (
	"time"

	"gorm.io/gorm"
)

// Composition records one produced score and where its artifacts live
type Composition struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RequestID string `gorm:"size:64;index" json:"request_id,omitempty"`
	UserID    string `gorm:"size:128;index" json:"user_id,omitempty"`

	Title         string  `json:"title"`
	Composer      string  `json:"composer"`
	Key           string  `gorm:"size:8" json:"key"`
	Form          string  `gorm:"size:16" json:"form"`
	TimeSignature string  `gorm:"size:8" json:"time_signature"`
	Tempo         int     `json:"tempo"`
	Temperature   float64 `json:"temperature"`
	Seed          int64   `json:"seed"`
	Measures      int     `json:"measures"`
	PartCount     int     `json:"parts"`

	ContinuationBackend string `gorm:"size:16" json:"continuation_backend,omitempty"`
	ContinuationUsed    bool   `json:"continuation_used"`
	SourceFile          string `json:"source_file,omitempty"`

	MusicXMLPath string `json:"-"`
	MIDIPath     string `json:"-"`
	SizeBytes    int64  `json:"size_bytes"`
}
