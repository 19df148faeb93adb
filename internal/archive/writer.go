// Package archive reads and writes the .jr3d zip container.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cogentcore.org/core/base/ordmap"

	"github.com/heimdex/jr3d/internal/projectfile"
)

const DefaultCompressionLevel = 6

// Entry is one binary file to store.
type Entry struct {
	Path string
	Data []byte
}

// Pack writes the manifest, the project state and every entry into a zip
// container. Entries sharing a path are not an error: the last one wins and
// the container holds one file per path, at the position the path was first
// seen.
func Pack(manifest projectfile.Manifest, state projectfile.ProjectState, entries []Entry, level int) ([]byte, error) {
	if level < flate.NoCompression || level > flate.BestCompression {
		return nil, fmt.Errorf("compression level %d out of range 0-9", level)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project state: %w", err)
	}

	files := ordmap.New[string, []byte]()
	files.Add(projectfile.ManifestPath, manifestJSON)
	files.Add(projectfile.ProjectStatePath, stateJSON)
	for _, e := range entries {
		if e.Path == projectfile.ManifestPath || e.Path == projectfile.ProjectStatePath {
			return nil, fmt.Errorf("entry path %q is reserved", e.Path)
		}
		files.Add(e.Path, e.Data)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	method := zip.Deflate
	if level == flate.NoCompression {
		method = zip.Store
	}
	modified := manifest.CreatedAt
	if modified.IsZero() {
		modified = time.Now()
	}

	for _, kv := range files.Order {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     kv.Key,
			Method:   method,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", kv.Key, err)
		}
		if _, err := w.Write(kv.Value); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", kv.Key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
