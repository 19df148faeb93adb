package modelload

import (
	"context"
	"testing"

	"github.com/heimdex/jr3d/internal/logging"
	"github.com/heimdex/jr3d/internal/restore"
	"github.com/heimdex/jr3d/internal/session"
)

func TestStubLoader(t *testing.T) {
	l := NewStubLoader(logging.Discard())

	m, err := l.LoadModel(context.Background(), restore.ModelSource{
		ModelFile: &session.Blob{Name: "hero.fbx", Data: []byte("fbx")},
		Textures:  []*session.Blob{{Name: "skin.png", Data: []byte("png")}},
	})
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if m.ID == "" {
		t.Error("expected fresh id")
	}
	if m.Name != "hero" {
		t.Errorf("Name = %q, want hero", m.Name)
	}
	if len(m.Textures) != 1 {
		t.Errorf("Textures = %d, want 1", len(m.Textures))
	}
	if m.OriginalClip != nil {
		t.Error("stub loader must not invent an original clip")
	}

	if _, err := l.LoadModel(context.Background(), restore.ModelSource{Name: "empty"}); err == nil {
		t.Error("expected error for missing model file")
	}
}
