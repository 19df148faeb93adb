package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/projectfile"
)

func writeTestArchive(t *testing.T) string {
	t.Helper()

	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	manifest := projectfile.Manifest{
		Version:     projectfile.FormatVersion,
		CreatedAt:   created,
		AppVersion:  "0.3.0",
		ProjectName: "Demo",
		ModelCount:  1,
	}
	state := projectfile.ProjectState{
		Version:       projectfile.FormatVersion,
		Name:          "Demo",
		CreatedAt:     created,
		UpdatedAt:     created,
		ExportOptions: projectfile.DefaultExportOptions(),
		Models: []projectfile.SerializableModel{{
			ID:           "m1",
			Name:         "Hero",
			ModelPath:    projectfile.ModelFilePath("m1", "hero.fbx"),
			TexturePaths: []string{projectfile.ModelTexturePath("m1", "skin.png")},
		}},
		Layers:         []projectfile.SerializableLayer{{ID: "l1", Elements: []projectfile.SerializableElement{{ID: "e1", Type: "text"}}}},
		SpineInstances: []projectfile.SerializableSpineInstance{},
	}
	data, err := archive.Pack(manifest, state, []archive.Entry{
		{Path: projectfile.ModelFilePath("m1", "hero.fbx"), Data: []byte("fbx-bytes")},
	}, archive.DefaultCompressionLevel)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "demo.jr3d")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect_Text(t *testing.T) {
	out, err := runCmd(t, "inspect", writeTestArchive(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Project:     Demo")
	assert.Contains(t, out, "Models:      1")
	assert.Contains(t, out, "2D:          1 layers, 1 elements, 0 spine instances")
	assert.Contains(t, out, "models/m1/hero.fbx")
	assert.Contains(t, out, "Missing assets (1):")
	assert.Contains(t, out, "models/m1/textures/skin.png")
}

func TestInspect_JSON(t *testing.T) {
	out, err := runCmd(t, "inspect", "--format", "json", writeTestArchive(t))
	require.NoError(t, err)

	var r inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "demo.jr3d", r.File)
	assert.Equal(t, "Demo", r.Manifest.ProjectName)
	assert.Equal(t, 1, r.Counts.Models)
	assert.False(t, r.Counts.HasDirector)
	assert.Equal(t, []string{"models/m1/textures/skin.png"}, r.Missing)

	var paths []string
	for _, e := range r.Entries {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, projectfile.ManifestPath)
	assert.Contains(t, paths, "models/m1/hero.fbx")
}

func TestInspect_YAML(t *testing.T) {
	out, err := runCmd(t, "inspect", "-f", "yaml", writeTestArchive(t))
	require.NoError(t, err)

	var r inspectReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Demo", r.Manifest.ProjectName)
	assert.Equal(t, 1, r.Counts.Layers)
	assert.Len(t, r.Missing, 1)
}

func TestInspect_UnknownFormat(t *testing.T) {
	_, err := runCmd(t, "inspect", "--format", "xml", writeTestArchive(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestInspect_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jr3d")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := runCmd(t, "inspect", path)
	require.Error(t, err)
}

func TestInspect_Extract(t *testing.T) {
	dir := t.TempDir()
	_, err := runCmd(t, "inspect", "--extract", dir, writeTestArchive(t))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "models", "m1", "hero.fbx"))
	require.NoError(t, err)
	assert.Equal(t, "fbx-bytes", string(data))
	assert.FileExists(t, filepath.Join(dir, projectfile.ManifestPath))
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		entry string
		ok    bool
	}{
		{"models/m1/a.fbx", true},
		{"../escape.txt", false},
		{"models/../../escape.txt", false},
		{"/etc/passwd", false},
		{"", false},
	}
	for _, tt := range tests {
		_, err := safeJoin(root, tt.entry)
		if tt.ok {
			assert.NoError(t, err, tt.entry)
		} else {
			assert.Error(t, err, tt.entry)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jr3d ")
}
