package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/heimdex/jr3d/internal/errors"
	"github.com/heimdex/jr3d/internal/projectfile"
)

// maxEntryBytes caps the decompressed size of a single entry.
const maxEntryBytes = 1 << 30

// Archive is an opened, version-checked container.
type Archive struct {
	Manifest projectfile.Manifest
	State    projectfile.ProjectState

	files map[string]*zip.File
	order []string
}

// EntryInfo describes one stored file.
type EntryInfo struct {
	Path           string
	Size           uint64
	CompressedSize uint64
}

// Open parses a container and both reserved documents. It fails with
// STRUCTURAL_ERROR when the container or a document cannot be read and with
// VERSION_INCOMPATIBLE when the format major differs.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStructural, "invalid archive container", err)
	}

	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := a.files[f.Name]; !dup {
			a.order = append(a.order, f.Name)
		}
		a.files[f.Name] = f
	}

	if err := a.readJSON(projectfile.ManifestPath, &a.Manifest); err != nil {
		return nil, err
	}
	if !projectfile.IsVersionCompatible(a.Manifest.Version) {
		return nil, apperrors.WithMetadata(apperrors.CodeVersionIncompatible,
			fmt.Sprintf("archive version %q is not compatible with %s", a.Manifest.Version, projectfile.FormatVersion),
			map[string]string{"version": a.Manifest.Version},
		)
	}
	if err := a.readJSON(projectfile.ProjectStatePath, &a.State); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile reads and opens a container from disk.
func OpenFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Open(data)
}

func (a *Archive) readJSON(name string, v any) error {
	data, err := a.ReadFile(name)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStructural, "missing "+name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrap(apperrors.CodeStructural, "invalid "+name, err)
	}
	return nil
}

// Has reports whether path is stored in the container.
func (a *Archive) Has(path string) bool {
	_, ok := a.files[path]
	return ok
}

// ReadFile returns the content of path, or an ASSET_MISSING error.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	f, ok := a.files[path]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeAssetMissing, "entry not found", map[string]string{"path": path})
	}
	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAssetMissing, "open entry "+path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAssetMissing, "read entry "+path, err)
	}
	if len(data) > maxEntryBytes {
		return nil, apperrors.WithMetadata(apperrors.CodeAssetMissing, "entry too large", map[string]string{"path": path})
	}
	return data, nil
}

// Paths lists the stored files in container order.
func (a *Archive) Paths() []string {
	return append([]string(nil), a.order...)
}

// Entries lists the stored files with their sizes.
func (a *Archive) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, len(a.order))
	for _, p := range a.order {
		f := a.files[p]
		out = append(out, EntryInfo{Path: p, Size: f.UncompressedSize64, CompressedSize: f.CompressedSize64})
	}
	return out
}

// MissingAssets lists the paths referenced by the project state that are
// not stored in the container.
func (a *Archive) MissingAssets() []string {
	var missing []string
	for _, p := range ReferencedPaths(a.State) {
		if !a.Has(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// ReferencedPaths lists every entry path a project state refers to.
func ReferencedPaths(s projectfile.ProjectState) []string {
	var out []string
	add := func(p string) {
		if p != "" {
			out = append(out, p)
		}
	}
	for _, m := range s.Models {
		add(m.ModelPath)
		for _, t := range m.TexturePaths {
			add(t)
		}
		for _, snap := range m.Snapshots {
			add(snap.ImagePath)
		}
		for _, g := range m.ShaderGroups {
			for _, f := range g.Features {
				params, err := f.DecodeParams()
				if err != nil {
					continue
				}
				switch p := params.(type) {
				case *projectfile.DissolveParams:
					add(p.NoiseTexture)
				case *projectfile.ToonParams:
					add(p.RampTexture)
				case *projectfile.TextureOverlayParams:
					add(p.Texture)
					add(p.MaskMap)
				}
			}
		}
		for _, e := range m.Effects {
			for _, r := range e.ResourcePaths {
				add(r)
			}
		}
	}
	for _, l := range s.Layers {
		for _, e := range l.Elements {
			add(e.ImagePath)
		}
	}
	for _, sp := range s.SpineInstances {
		add(sp.SkeletonPath)
		add(sp.AtlasPath)
		for _, t := range sp.TexturePaths {
			add(t)
		}
	}
	return out
}
