// Package export builds .jr3d archives from the live session.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/heimdex/jr3d/internal/archive"
	apperrors "github.com/heimdex/jr3d/internal/errors"
	"github.com/heimdex/jr3d/internal/fetch"
	"github.com/heimdex/jr3d/internal/metrics"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/serialize"
	"github.com/heimdex/jr3d/internal/session"
)

type Exporter struct {
	resolver         *fetch.Resolver
	compressionLevel int
	logger           *slog.Logger
	now              func() time.Time
}

func NewExporter(resolver *fetch.Resolver, compressionLevel int, logger *slog.Logger) *Exporter {
	return &Exporter{
		resolver:         resolver,
		compressionLevel: compressionLevel,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Export runs option validation, effect resolution, serialization and
// packaging. It never panics.
func (e *Exporter) Export(ctx context.Context, p ExportParams) (result *ExportResult) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("panic during export",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			result = &ExportResult{Err: apperrors.New(apperrors.CodeInternal, fmt.Sprintf("export failed: %v", rec))}
		}
		status := "success"
		if !result.Success {
			status = string(apperrors.CodeOf(result.Err))
		}
		metrics.ObserveOperation(metrics.OperationExport, status, started, len(result.Archive))
	}()

	if err := p.Options.Validate(); err != nil {
		e.logger.Warn("export rejected", "error", err)
		return &ExportResult{Err: err}
	}
	opts := p.Options.Effective()

	project := p.Project
	if project == nil {
		project = &session.Project{}
	}
	name := p.ProjectName
	if name == "" {
		name = project.Name
	}
	now := e.now()
	createdAt := project.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	c := serialize.NewCollector(e.logger)
	state := projectfile.ProjectState{
		Version:        projectfile.FormatVersion,
		Name:           name,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
		ExportOptions:  opts,
		Models:         []projectfile.SerializableModel{},
		GlobalSettings: serialize.Settings(project.Settings),
	}

	hasAnimations := false
	if opts.Include3DModels {
		resolved := e.resolveEffects(ctx, project.Models, opts.IncludeEffects)
		modelOpts := serialize.ModelOptions{
			Animations: opts.IncludeAnimations,
			Shader:     opts.IncludeShader,
			Effects:    opts.IncludeEffects,
		}
		for i, m := range project.Models {
			sm, ok := serialize.Model(m, modelOpts, resolved[i], c)
			if !ok {
				continue
			}
			if len(sm.CreatedClips) > 0 {
				hasAnimations = true
			}
			state.Models = append(state.Models, sm)
		}
	}

	if opts.Include2D {
		state.Layers = make([]projectfile.SerializableLayer, 0, len(project.Layers))
		for _, l := range project.Layers {
			state.Layers = append(state.Layers, serialize.Layer(l, c))
		}
		state.SpineInstances = make([]projectfile.SerializableSpineInstance, 0, len(project.SpineInstances))
		for _, s := range project.SpineInstances {
			if ss, ok := serialize.SpineInstance(s, c); ok {
				state.SpineInstances = append(state.SpineInstances, ss)
			}
		}
	}

	if opts.IncludeAnimations {
		state.Director = serialize.Director(project.Director)
		if events := EventsFromDirector(state.Director); len(events) > 0 {
			hasAnimations = true
			edl := GenerateEDL(events, name, float64(state.Director.FPS))
			c.Add(projectfile.DirectorEDLPath, []byte(edl))
		}
	}

	manifest := projectfile.Manifest{
		Version:       projectfile.FormatVersion,
		CreatedAt:     now,
		AppVersion:    p.AppVersion,
		ProjectName:   name,
		ModelCount:    len(state.Models),
		HasAnimations: hasAnimations,
	}

	entries := make([]archive.Entry, 0, len(c.Entries()))
	for _, en := range c.Entries() {
		entries = append(entries, archive.Entry{Path: en.Path, Data: en.Data})
	}
	data, err := archive.Pack(manifest, state, entries, e.compressionLevel)
	if err != nil {
		return &ExportResult{Err: apperrors.Wrap(apperrors.CodeInternal, "package archive", err)}
	}

	warnings := make([]string, 0, len(c.Warnings()))
	skipped := map[string]int{}
	for _, w := range c.Warnings() {
		warnings = append(warnings, w.String())
		skipped[w.Kind]++
	}
	for kind, n := range skipped {
		metrics.ObserveSkipped(metrics.OperationExport, kind, n)
	}

	e.logger.Info("project exported",
		"project", name,
		"models", len(state.Models),
		"entries", len(entries),
		"bytes", len(data),
		"warnings", len(warnings),
	)

	return &ExportResult{
		Success:  true,
		Archive:  data,
		FileName: FileName(name),
		Manifest: manifest,
		Paths:    c.Paths(),
		Warnings: warnings,
	}
}

// resolveEffects resolves the effect files of every model and returns them
// grouped per model, in model order.
func (e *Exporter) resolveEffects(ctx context.Context, models []*session.Model, enabled bool) [][]fetch.Resolved {
	out := make([][]fetch.Resolved, len(models))
	if !enabled {
		return out
	}

	var all []*session.Effect
	for _, m := range models {
		all = append(all, m.Effects...)
	}
	if len(all) == 0 {
		return out
	}

	resolved := e.resolver.Resolve(ctx, all)
	offset := 0
	for i, m := range models {
		out[i] = resolved[offset : offset+len(m.Effects)]
		offset += len(m.Effects)
	}
	return out
}
