package download

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer() *Server {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeArchive(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "a1.jr3d")
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return p
}

func TestServeArchive_Full(t *testing.T) {
	p := writeArchive(t, "0123456789")
	req := httptest.NewRequest(http.MethodGet, "/archives/a1/download", nil)
	rr := httptest.NewRecorder()

	if err := newTestServer().ServeArchive(rr, req, p, "My Project.jr3d"); err != nil {
		t.Fatalf("ServeArchive() error = %v", err)
	}

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "0123456789" {
		t.Errorf("body = %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != ArchiveContentType {
		t.Errorf("Content-Type = %q, want %q", ct, ArchiveContentType)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="My Project.jr3d"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestServeArchive_Range(t *testing.T) {
	p := writeArchive(t, "0123456789")
	req := httptest.NewRequest(http.MethodGet, "/archives/a1/download", nil)
	req.Header.Set("Range", "bytes=2-5")
	rr := httptest.NewRecorder()

	if err := newTestServer().ServeArchive(rr, req, p, "a.jr3d"); err != nil {
		t.Fatalf("ServeArchive() error = %v", err)
	}

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rr.Code)
	}
	if rr.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rr.Body.String())
	}
	if cr := rr.Header().Get("Content-Range"); cr != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", cr)
	}
}

func TestServeArchive_Unsatisfiable(t *testing.T) {
	p := writeArchive(t, "0123456789")
	req := httptest.NewRequest(http.MethodGet, "/archives/a1/download", nil)
	req.Header.Set("Range", "bytes=50-")
	rr := httptest.NewRecorder()

	if err := newTestServer().ServeArchive(rr, req, p, "a.jr3d"); err != nil {
		t.Fatalf("ServeArchive() error = %v", err)
	}
	if rr.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d, want 416", rr.Code)
	}
	if cr := rr.Header().Get("Content-Range"); cr != "bytes */10" {
		t.Errorf("Content-Range = %q", cr)
	}
}

func TestServeArchive_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/archives/a1/download", nil)
	rr := httptest.NewRecorder()

	err := newTestServer().ServeArchive(rr, req, filepath.Join(t.TempDir(), "gone.jr3d"), "a.jr3d")
	if err != nil {
		t.Fatalf("ServeArchive() error = %v", err)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestServeContent_SniffsType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	req := httptest.NewRequest(http.MethodGet, "/archives/a1/entries/x", nil)
	rr := httptest.NewRecorder()

	err := newTestServer().ServeContent(rr, req, "models/m1/textures/skin", bytes.NewReader(png), int64(len(png)))
	if err != nil {
		t.Fatalf("ServeContent() error = %v", err)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.Equal(rr.Body.Bytes(), png) {
		t.Error("body was not served from the start after sniffing")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"project.jr3d", []byte("PK\x03\x04"), ArchiveContentType},
		{"state.json", []byte(`{"a":1}`), "application/json"},
		{"blob.bin", []byte{0x01, 0x02}, "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.name, tt.head); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
