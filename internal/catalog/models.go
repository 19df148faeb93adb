// Package catalog records every export and import the agent performs and
// keeps exported archives on disk.
package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/jr3d/internal/projectfile"
)

const (
	KindExport = "export"
	KindImport = "import"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one export or import. Path is set for exports written to the
// archives directory and for imports read from disk.
type Record struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	FileName      string    `json:"file_name"`
	ProjectName   string    `json:"project_name"`
	Path          string    `json:"path,omitempty"`
	SizeBytes     int64     `json:"size_bytes"`
	ModelCount    int       `json:"model_count"`
	HasAnimations bool      `json:"has_animations"`
	FormatVersion string    `json:"format_version,omitempty"`
	Warnings      []string  `json:"warnings"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Done reports whether the record reached a terminal status.
func (r *Record) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Downloadable reports whether the record has an archive on disk.
func (r *Record) Downloadable() bool {
	return r.Kind == KindExport && r.Status == StatusCompleted && r.Path != ""
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	return uuid.NewString()
}

// IsArchiveFile reports whether filename carries the archive extension,
// ignoring case.
func IsArchiveFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), projectfile.FileExtension)
}
