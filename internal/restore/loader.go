// Package restore rebuilds a live session from a .jr3d archive. Every
// restored entity gets a fresh identifier; cross-references are rewritten
// through a per-import ledger in a fixed phase order.
package restore

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/heimdex/jr3d/internal/archive"
	apperrors "github.com/heimdex/jr3d/internal/errors"
	"github.com/heimdex/jr3d/internal/ledger"
	"github.com/heimdex/jr3d/internal/metrics"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// LoadOptions carries the live-session collaborators of one import. Only
// Models is required.
type LoadOptions struct {
	Models     ModelRegistry
	Director   DirectorController
	Layers     LayerStore
	Settings   SettingsStore
	OnProgress ProgressFunc
}

// LoadResult is the outcome of an import. Success is false only when the
// archive could not be read or the import was interrupted.
type LoadResult struct {
	Success      bool
	ProjectState *projectfile.ProjectState
	Manifest     *projectfile.Manifest
	ModelIDMap   map[string]string
	ClipIDMap    map[string]string
	SpineIDMap   map[string]string
	Warnings     []string
	Err          error
}

type Loader struct {
	models    ModelLoader
	extractor ClipExtractor
	logger    *slog.Logger
}

func NewLoader(models ModelLoader, extractor ClipExtractor, logger *slog.Logger) *Loader {
	return &Loader{
		models:    models,
		extractor: extractor,
		logger:    logger,
	}
}

// run is the state of one import.
type run struct {
	ctx      context.Context
	archive  *archive.Archive
	state    *projectfile.ProjectState
	options  projectfile.ExportOptions
	ledger   *ledger.Ledger
	opts     LoadOptions
	restored []restoredModel
	warnings []string
	logger   *slog.Logger
}

type restoredModel struct {
	src   *projectfile.SerializableModel
	newID string
}

func (r *run) warn(msg string, attrs ...any) {
	r.logger.Warn(msg, attrs...)
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", attrs[i], attrs[i+1])
	}
	r.warnings = append(r.warnings, b.String())
}

func (r *run) progress(percent int, message string) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(percent, message)
	}
}

// blob reads an entry into a Blob named after its final path segment.
func (r *run) blob(path string) (*session.Blob, error) {
	data, err := r.archive.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &session.Blob{Name: projectfile.FileSegment(path), Data: data}, nil
}

// LoadProject restores data into the collaborators of opts. Nothing is
// mutated unless the archive opens and passes the version gate.
func (l *Loader) LoadProject(ctx context.Context, data []byte, opts LoadOptions) (result *LoadResult) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("panic during import",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			result = &LoadResult{Err: apperrors.New(apperrors.CodeInternal, fmt.Sprintf("import failed: %v", rec))}
		}
		status := "success"
		if !result.Success {
			status = string(apperrors.CodeOf(result.Err))
		}
		metrics.ObserveOperation(metrics.OperationImport, status, started, len(data))
		if len(result.Warnings) > 0 {
			metrics.ObserveSkipped(metrics.OperationImport, "restore", len(result.Warnings))
		}
	}()

	if opts.Models == nil {
		return &LoadResult{Err: apperrors.New(apperrors.CodeInternal, "no model registry supplied")}
	}

	r := &run{
		ctx:    ctx,
		ledger: ledger.New(),
		opts:   opts,
		logger: l.logger,
	}

	r.progress(0, "reading archive")
	a, err := archive.Open(data)
	if err != nil {
		l.logger.Error("archive rejected", "error", err, "code", apperrors.CodeOf(err))
		return &LoadResult{Err: err}
	}
	r.archive = a
	r.state = &a.State
	r.options = a.State.ExportOptions.Effective()
	// Archives written before the option block existed carry no flags.
	if !r.options.CanExport() {
		r.options = projectfile.DefaultExportOptions()
	}

	l.logger.Info("importing project",
		"project", a.Manifest.ProjectName,
		"version", a.Manifest.Version,
		"models", len(a.State.Models),
	)

	phases := []struct {
		percent int
		message string
		enabled bool
		fn      func(*run)
	}{
		{5, "loading models", true, l.restoreModels},
		{50, "applying transforms", true, restoreTransforms},
		{60, "restoring materials", r.options.IncludeShader, restoreMaterials},
		{70, "restoring clips", r.options.IncludeAnimations, l.restoreClips},
		{80, "restoring effects", r.options.IncludeEffects, restoreEffects},
		{88, "restoring layers", r.options.Include2D && opts.Layers != nil, restoreLayers},
		{94, "restoring director", r.options.IncludeAnimations && opts.Director != nil && a.State.Director != nil, restoreDirector},
	}
	if err := ctx.Err(); err != nil {
		return r.result(false, apperrors.Wrap(apperrors.CodeInternal, "import interrupted", err))
	}
	// Collaborators are mutated from here on; the run completes even if
	// ctx is cancelled.
	r.ctx = context.WithoutCancel(ctx)
	for _, p := range phases {
		if !p.enabled {
			continue
		}
		r.progress(p.percent, p.message)
		p.fn(r)
	}

	if opts.Settings != nil {
		opts.Settings.ApplySettings(a.State.Name, settings(a.State.GlobalSettings))
	}

	r.progress(100, "done")
	l.logger.Info("project imported",
		"project", a.Manifest.ProjectName,
		"models", r.ledger.Models.Len(),
		"clips", r.ledger.Clips.Len(),
		"warnings", len(r.warnings),
	)
	return r.result(true, nil)
}

func (r *run) result(success bool, err error) *LoadResult {
	return &LoadResult{
		Success:      success,
		ProjectState: r.state,
		Manifest:     &r.archive.Manifest,
		ModelIDMap:   r.ledger.ModelIDs(),
		ClipIDMap:    r.ledger.ClipIDs(),
		SpineIDMap:   r.ledger.SpineIDs(),
		Warnings:     r.warnings,
		Err:          err,
	}
}

func vec3(v projectfile.Vec3) session.Vec3 {
	return session.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func settings(s projectfile.GlobalSettings) session.GlobalSettings {
	return session.GlobalSettings{
		BackgroundColor:  s.BackgroundColor,
		ShowGrid:         s.ShowGrid,
		ShowAxes:         s.ShowAxes,
		AmbientIntensity: s.AmbientIntensity,
		CameraPosition:   vec3(s.CameraPosition),
		CameraTarget:     vec3(s.CameraTarget),
	}
}
