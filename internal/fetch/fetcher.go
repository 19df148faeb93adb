// Package fetch resolves effect files at export time: uploaded effects from
// their in-memory blobs, public effects from the shared resource root over
// HTTP or from a local directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// maxResourceBytes caps a single fetched resource.
const maxResourceBytes = 256 << 20

var ErrInvalidResourcePath = errors.New("invalid resource path")

// FetchError represents a non-2xx answer from the resource root.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx).
// Client errors (4xx) are considered permanent.
func (e *FetchError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Fetcher loads one resource, addressed relative to a resource root.
type Fetcher interface {
	Fetch(ctx context.Context, relativePath string) ([]byte, error)
}

// New picks an HTTP or directory fetcher for root. An empty root yields a
// fetcher that fails every request, so public effects export without files.
func New(root string, logger *slog.Logger) Fetcher {
	switch {
	case root == "":
		return NewStubFetcher(logger)
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTPFetcher(root, logger)
	default:
		return NewDirFetcher(root)
	}
}

// cleanRelative rejects absolute and escaping paths.
func cleanRelative(relativePath string) (string, error) {
	p := strings.ReplaceAll(relativePath, "\\", "/")
	p = path.Clean(strings.TrimPrefix(p, "./"))
	if p == "." || p == "" || strings.HasPrefix(p, "/") || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourcePath, relativePath)
	}
	return p, nil
}

// HTTPFetcher fetches resources below a base URL.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPFetcher(baseURL string, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, relativePath string) ([]byte, error) {
	rel, err := cleanRelative(relativePath)
	if err != nil {
		return nil, err
	}

	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	target := f.baseURL + "/" + strings.Join(segments, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxResourceBytes {
		return nil, fmt.Errorf("resource %s exceeds %d bytes", rel, maxResourceBytes)
	}

	f.logger.Debug("fetched effect resource", "url", target, "bytes", len(data))
	return data, nil
}

// DirFetcher reads resources from a local directory tree.
type DirFetcher struct {
	fsys fs.FS
}

func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{fsys: os.DirFS(dir)}
}

// NewFSFetcher serves resources from any fs.FS, e.g. fstest.MapFS in tests.
func NewFSFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{fsys: fsys}
}

func (f *DirFetcher) Fetch(ctx context.Context, relativePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := cleanRelative(relativePath)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}

// StubFetcher is used when no resource root is configured.
type StubFetcher struct {
	logger *slog.Logger
}

func NewStubFetcher(logger *slog.Logger) *StubFetcher {
	return &StubFetcher{logger: logger}
}

func (f *StubFetcher) Fetch(ctx context.Context, relativePath string) ([]byte, error) {
	f.logger.Info("fetch stub: no effects resource root configured", "path", relativePath)
	return nil, fmt.Errorf("no resource root configured for %q", relativePath)
}
