package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/catalog"
	"github.com/heimdex/jr3d/internal/workspace"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State          string            `json:"state"`
	LastError      string            `json:"last_error,omitempty"`
	Project        workspace.Summary `json:"project"`
	ExportsCount   int               `json:"exports_count"`
	ImportsCount   int               `json:"imports_count"`
	Running        int               `json:"running"`
	Inbox          *InboxResponse    `json:"inbox,omitempty"`
	LastImportID   string            `json:"last_import_id,omitempty"`
	LastImportName string            `json:"last_import_name,omitempty"`
}

type InboxResponse struct {
	Paused    bool  `json:"paused"`
	Pending   int   `json:"pending"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

type ProjectResponse struct {
	workspace.Summary
	LastImport *ArchiveResponse `json:"last_import,omitempty"`
}

type ImportResponse struct {
	Archive    ArchiveResponse   `json:"archive"`
	ModelIDMap map[string]string `json:"model_id_map"`
	ClipIDMap  map[string]string `json:"clip_id_map"`
	SpineIDMap map[string]string `json:"spine_id_map"`
	Warnings   []string          `json:"warnings"`
}

type ArchiveResponse struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	Status        string   `json:"status"`
	FileName      string   `json:"file_name"`
	ProjectName   string   `json:"project_name"`
	SizeBytes     int64    `json:"size_bytes"`
	Size          string   `json:"size"`
	ModelCount    int      `json:"model_count"`
	HasAnimations bool     `json:"has_animations"`
	FormatVersion string   `json:"format_version,omitempty"`
	Warnings      []string `json:"warnings"`
	Error         string   `json:"error,omitempty"`
	Downloadable  bool     `json:"downloadable"`
	CreatedAt     string   `json:"created_at"`
	Age           string   `json:"age"`
	UpdatedAt     string   `json:"updated_at"`
}

type ArchivesResponse struct {
	Archives []ArchiveResponse `json:"archives"`
}

type EntryResponse struct {
	Path           string `json:"path"`
	Size           uint64 `json:"size"`
	CompressedSize uint64 `json:"compressed_size"`
}

type EntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Missing []string        `json:"missing"`
}

type ErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func ArchiveToResponse(rec *catalog.Record) ArchiveResponse {
	return ArchiveResponse{
		ID:            rec.ID,
		Kind:          rec.Kind,
		Status:        rec.Status,
		FileName:      rec.FileName,
		ProjectName:   rec.ProjectName,
		SizeBytes:     rec.SizeBytes,
		Size:          humanize.Bytes(uint64(max(rec.SizeBytes, 0))),
		ModelCount:    rec.ModelCount,
		HasAnimations: rec.HasAnimations,
		FormatVersion: rec.FormatVersion,
		Warnings:      rec.Warnings,
		Error:         rec.Error,
		Downloadable:  rec.Downloadable(),
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		Age:           humanize.Time(rec.CreatedAt),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

func EntriesToResponse(a *archive.Archive) EntriesResponse {
	infos := a.Entries()
	resp := EntriesResponse{
		Entries: make([]EntryResponse, len(infos)),
		Missing: a.MissingAssets(),
	}
	for i, e := range infos {
		resp.Entries[i] = EntryResponse{Path: e.Path, Size: e.Size, CompressedSize: e.CompressedSize}
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	return resp
}
