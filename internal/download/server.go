// Package download serves stored archives and their entries over HTTP with
// single byte-range support.
package download

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"

	"github.com/heimdex/jr3d/internal/projectfile"
)

// ArchiveContentType is sent for whole .jr3d archives, which are zip files.
const ArchiveContentType = "application/zip"

type DownloadService interface {
	ServeArchive(w http.ResponseWriter, r *http.Request, filePath, downloadName string) error
	ServeContent(w http.ResponseWriter, r *http.Request, name string, content io.ReadSeeker, size int64) error
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

// ServeArchive streams the archive at filePath as an attachment named
// downloadName.
func (s *Server) ServeArchive(w http.ResponseWriter, r *http.Request, filePath, downloadName string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "archive not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	w.Header().Set("Content-Type", ArchiveContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	return s.serve(w, r, file, stat.Size())
}

// ServeContent serves one in-memory archive entry. The content type is
// sniffed from the data, then guessed from the name.
func (s *Server) ServeContent(w http.ResponseWriter, r *http.Request, name string, content io.ReadSeeker, size int64) error {
	head := make([]byte, 261)
	n, _ := io.ReadFull(content, head)
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", name, err)
	}

	w.Header().Set("Content-Type", ContentType(name, head[:n]))
	return s.serve(w, r, content, size)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, content io.ReadSeeker, size int64) error {
	w.Header().Set("Accept-Ranges", "bytes")

	parsed, err := ParseRange(r.Header.Get("Range"), size)
	switch err {
	case nil:
	case ErrUnsatisfiable:
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case ErrInvalidRange:
		// Malformed ranges are ignored and the whole body is sent.
		parsed = nil
	default:
		return err
	}

	if parsed == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			io.Copy(w, content)
		}
		return nil
	}

	if _, err := content.Seek(parsed.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", parsed.ContentLength()))
	w.Header().Set("Content-Range", parsed.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method != http.MethodHead {
		io.CopyN(w, content, parsed.ContentLength())
	}
	return nil
}

// ContentType picks the MIME type of an archive entry.
func ContentType(name string, head []byte) string {
	if strings.EqualFold(path.Ext(name), projectfile.FileExtension) {
		return ArchiveContentType
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
