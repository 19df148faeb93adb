package export

import (
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// ExportParams is the input of one export.
type ExportParams struct {
	ProjectName string
	AppVersion  string
	Options     projectfile.ExportOptions
	Project     *session.Project
}

// ExportResult is the outcome of an export. Success is false only when
// nothing could be exported or the export failed internally; skipped
// assets are reported in Warnings.
type ExportResult struct {
	Success  bool
	Archive  []byte
	FileName string
	Manifest projectfile.Manifest
	Paths    []string
	Warnings []string
	Err      error
}

// ExportRequest is the JSON body accepted by the HTTP export endpoint.
type ExportRequest struct {
	ProjectName string                     `json:"projectName"`
	Options     *projectfile.ExportOptions `json:"options,omitempty"`
}

// ExportResponse describes a stored export.
type ExportResponse struct {
	Status    string   `json:"status"`
	ArchiveID string   `json:"archiveId"`
	FileName  string   `json:"fileName"`
	Size      int      `json:"size"`
	Models    int      `json:"models"`
	Warnings  []string `json:"warnings"`
}
