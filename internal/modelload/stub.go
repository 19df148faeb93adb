// Package modelload provides the default model loader. Decoding model
// files is left to the viewer; the server keeps the raw bytes.
package modelload

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/heimdex/jr3d/internal/restore"
	"github.com/heimdex/jr3d/internal/session"
)

// StubLoader builds a live model around the raw model file without parsing
// it. Restored models have no skeleton and no original clip, so their cut
// clips are skipped on import.
type StubLoader struct {
	logger *slog.Logger
}

func NewStubLoader(logger *slog.Logger) *StubLoader {
	return &StubLoader{logger: logger}
}

func (l *StubLoader) LoadModel(ctx context.Context, src restore.ModelSource) (*session.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.ModelFile == nil || len(src.ModelFile.Data) == 0 {
		return nil, fmt.Errorf("model %q has no data", src.Name)
	}

	name := src.Name
	if name == "" {
		name = strings.TrimSuffix(src.ModelFile.Name, path.Ext(src.ModelFile.Name))
	}

	l.logger.Debug("model loader stub: keeping raw model file",
		"name", name,
		"bytes", len(src.ModelFile.Data),
		"textures", len(src.Textures),
	)
	return &session.Model{
		ID:        session.NewID(),
		Name:      name,
		ModelFile: src.ModelFile,
		Textures:  src.Textures,
		Transform: session.IdentityTransform(),
		Visible:   true,
		Opacity:   1,
	}, nil
}
