package fetch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/heimdex/jr3d/internal/errors"
	"github.com/heimdex/jr3d/internal/session"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
)

// File is one resolved effect resource.
type File struct {
	RelativePath string
	Data         []byte
}

// Failure records a resource that could not be resolved.
type Failure struct {
	RelativePath string
	Err          error
}

// Resolved holds the outcome for one effect, in declaration order: the
// primary effect file first, then its dependencies.
type Resolved struct {
	Files    []File
	Failures []Failure
}

// ResolveUploaded reads an uploaded effect's files from its in-memory assets.
func ResolveUploaded(e *session.Effect) Resolved {
	var r Resolved
	for _, a := range e.Assets {
		if a.Blob == nil || len(a.Blob.Data) == 0 {
			r.Failures = append(r.Failures, Failure{
				RelativePath: a.RelativePath,
				Err:          apperrors.New(apperrors.CodeAssetMissing, "uploaded effect asset has no data"),
			})
			continue
		}
		r.Files = append(r.Files, File{RelativePath: a.RelativePath, Data: a.Blob.Data})
	}
	return r
}

// PublicResources lists the primary file and declared dependencies of a
// public effect, without blanks or repeats.
func PublicResources(e *session.Effect) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range append([]string{e.EffectPath}, e.Dependencies...) {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Resolver resolves the files of many effects with bounded parallelism.
type Resolver struct {
	fetcher     Fetcher
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

func NewResolver(fetcher Fetcher, concurrency int, timeout time.Duration, logger *slog.Logger) *Resolver {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		fetcher:     fetcher,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

type job struct {
	effect int
	slot   int
	path   string
}

type outcome struct {
	data []byte
	err  error
}

// Resolve returns one Resolved per effect, at the effect's index. Fetches
// complete in any order but results are stored by input position, and a
// failed fetch never cancels its siblings.
func (r *Resolver) Resolve(ctx context.Context, effects []*session.Effect) []Resolved {
	results := make([]Resolved, len(effects))
	outcomes := make([][]outcome, len(effects))

	var jobs []job
	for i, e := range effects {
		if session.NormalizeEffectSource(e.SourceType) == session.EffectSourceUploaded {
			results[i] = ResolveUploaded(e)
			continue
		}
		paths := PublicResources(e)
		outcomes[i] = make([]outcome, len(paths))
		for slot, p := range paths {
			jobs = append(jobs, job{effect: i, slot: slot, path: p})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()
			data, err := r.fetcher.Fetch(fctx, j.path)
			outcomes[j.effect][j.slot] = outcome{data: data, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, j := range jobs {
		o := outcomes[j.effect][j.slot]
		res := &results[j.effect]
		if o.err != nil {
			r.logger.Warn("effect resource fetch failed",
				"effect_id", effects[j.effect].ID,
				"path", j.path,
				"error", o.err,
			)
			res.Failures = append(res.Failures, Failure{
				RelativePath: j.path,
				Err:          apperrors.Wrap(apperrors.CodeRemoteFetchFailure, "fetch effect resource", o.err),
			})
			continue
		}
		res.Files = append(res.Files, File{RelativePath: j.path, Data: o.data})
	}
	return results
}
