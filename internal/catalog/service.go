package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/heimdex/jr3d/internal/export"
	"github.com/heimdex/jr3d/internal/logging"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/restore"
	"github.com/heimdex/jr3d/internal/workspace"
)

// ConfigLastImport holds the id of the most recent successful import.
const ConfigLastImport = "last_import_id"

var ErrRecordNotFound = errors.New("archive record not found")

type Exporter interface {
	Export(ctx context.Context, p export.ExportParams) *export.ExportResult
}

type Importer interface {
	LoadProject(ctx context.Context, data []byte, opts restore.LoadOptions) *restore.LoadResult
}

type CatalogService interface {
	ExportProject(ctx context.Context, projectName string, opts *projectfile.ExportOptions) (*Record, error)
	ImportArchive(ctx context.Context, fileName string, data []byte, onProgress restore.ProgressFunc) (*Record, *restore.LoadResult, error)
	ImportFile(ctx context.Context, path string) (*Record, error)
	GetRecords(ctx context.Context, kind string, limit int) ([]*Record, error)
	GetRecord(ctx context.Context, id string) (*Record, error)
	RemoveRecord(ctx context.Context, id string) error
	LastImport(ctx context.Context) (*Record, error)
}

type Service struct {
	// opMu serializes exports and imports over the shared workspace.
	opMu sync.Mutex

	repo        Repository
	exporter    Exporter
	importer    Importer
	ws          *workspace.Workspace
	archivesDir string
	appVersion  string
	logger      *slog.Logger
}

func NewService(repo Repository, exporter Exporter, importer Importer, ws *workspace.Workspace, archivesDir, appVersion string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		exporter:    exporter,
		importer:    importer,
		ws:          ws,
		archivesDir: archivesDir,
		appVersion:  appVersion,
		logger:      logger,
	}
}

// ExportProject exports the workspace and stores the archive under the
// archives directory. A failed export still yields a failed record.
func (s *Service) ExportProject(ctx context.Context, projectName string, opts *projectfile.ExportOptions) (*Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	options := projectfile.DefaultExportOptions()
	if opts != nil {
		options = *opts
	}
	if projectName == "" {
		projectName = s.ws.Name()
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:          NewID(),
		Kind:        KindExport,
		Status:      StatusRunning,
		FileName:    export.FileName(projectName),
		ProjectName: projectName,
		Warnings:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	res := s.exporter.Export(ctx, export.ExportParams{
		ProjectName: projectName,
		AppVersion:  s.appVersion,
		Options:     options,
		Project:     s.ws.Project(),
	})
	if !res.Success {
		return rec, s.fail(ctx, rec, res.Err)
	}

	path, err := s.store(rec.ID, res.Archive)
	if err != nil {
		return rec, s.fail(ctx, rec, err)
	}

	rec.Status = StatusCompleted
	rec.FileName = res.FileName
	rec.Path = path
	rec.SizeBytes = int64(len(res.Archive))
	rec.ModelCount = res.Manifest.ModelCount
	rec.HasAnimations = res.Manifest.HasAnimations
	rec.FormatVersion = res.Manifest.Version
	rec.Warnings = nonNil(res.Warnings)
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return rec, fmt.Errorf("update record: %w", err)
	}

	logging.WithArchiveID(s.log(), rec.ID).Info("archive stored", "path", logging.SanitizePath(path), "size", rec.SizeBytes)
	return rec, nil
}

// store writes data to the archives directory via a temporary file so a
// crash never leaves a truncated archive behind.
func (s *Service) store(id string, data []byte) (string, error) {
	if err := os.MkdirAll(s.archivesDir, 0755); err != nil {
		return "", fmt.Errorf("create archives dir: %w", err)
	}
	if err := export.ValidateOutputDir(s.archivesDir); err != nil {
		return "", err
	}

	path := filepath.Join(s.archivesDir, id+projectfile.FileExtension)
	tmp, err := os.CreateTemp(s.archivesDir, id+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move archive: %w", err)
	}
	return path, nil
}

// ImportArchive restores data into the workspace. The returned error is
// the import's own error when it fails; the record reflects the outcome
// either way.
func (s *Service) ImportArchive(ctx context.Context, fileName string, data []byte, onProgress restore.ProgressFunc) (*Record, *restore.LoadResult, error) {
	return s.importData(ctx, fileName, "", data, onProgress)
}

// ImportFile imports the archive at path.
func (s *Service) ImportFile(ctx context.Context, path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	rec, _, err := s.importData(ctx, filepath.Base(path), path, data, nil)
	return rec, err
}

func (s *Service) importData(ctx context.Context, fileName, path string, data []byte, onProgress restore.ProgressFunc) (*Record, *restore.LoadResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := time.Now().UTC()
	rec := &Record{
		ID:        NewID(),
		Kind:      KindImport,
		Status:    StatusRunning,
		FileName:  fileName,
		Path:      path,
		SizeBytes: int64(len(data)),
		Warnings:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("create record: %w", err)
	}

	res := s.importer.LoadProject(ctx, data, restore.LoadOptions{
		Models:     s.ws,
		Director:   s.ws,
		Layers:     s.ws,
		Settings:   s.ws,
		OnProgress: onProgress,
	})
	if res.Manifest != nil {
		rec.ProjectName = res.Manifest.ProjectName
		rec.FormatVersion = res.Manifest.Version
		rec.HasAnimations = res.Manifest.HasAnimations
	}
	rec.ModelCount = len(res.ModelIDMap)
	rec.Warnings = nonNil(res.Warnings)
	if !res.Success {
		return rec, res, s.fail(ctx, rec, res.Err)
	}

	rec.Status = StatusCompleted
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return rec, res, fmt.Errorf("update record: %w", err)
	}
	if err := s.repo.SetConfig(ctx, ConfigLastImport, rec.ID); err != nil {
		s.log().Warn("failed to remember last import", "error", err)
	}

	logging.WithArchiveID(s.log(), rec.ID).Info("archive imported",
		"project", rec.ProjectName,
		"models", rec.ModelCount,
		"warnings", len(rec.Warnings),
	)
	return rec, res, nil
}

// fail marks rec failed and returns cause. The record update runs without
// the caller's context so a cancelled request is still recorded.
func (s *Service) fail(ctx context.Context, rec *Record, cause error) error {
	if cause == nil {
		cause = errors.New("unknown failure")
	}
	rec.Status = StatusFailed
	rec.Error = cause.Error()
	rec.UpdatedAt = time.Now().UTC()
	log := logging.WithArchiveID(s.log(), rec.ID)
	if err := s.repo.UpdateRecord(context.WithoutCancel(ctx), rec); err != nil {
		log.Error("failed to record failure", "error", err)
	}
	log.Warn("archive operation failed", "kind", rec.Kind, "error", cause)
	return cause
}

func (s *Service) GetRecords(ctx context.Context, kind string, limit int) ([]*Record, error) {
	return s.repo.ListRecords(ctx, kind, limit)
}

func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// RemoveRecord deletes a record and the archive it owns. Imported files
// belong to the user and are left in place.
func (s *Service) RemoveRecord(ctx context.Context, id string) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.Kind == KindExport && rec.Path != "" {
		if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove archive: %w", err)
		}
	}
	return s.repo.DeleteRecord(ctx, id)
}

// LastImport returns the most recent successful import, or nil.
func (s *Service) LastImport(ctx context.Context) (*Record, error) {
	id, err := s.repo.GetConfig(ctx, ConfigLastImport)
	if err != nil || id == "" {
		return nil, err
	}
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
