package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimdex/jr3d/internal/animation"
	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/catalog"
	"github.com/heimdex/jr3d/internal/db"
	"github.com/heimdex/jr3d/internal/download"
	"github.com/heimdex/jr3d/internal/export"
	"github.com/heimdex/jr3d/internal/fetch"
	"github.com/heimdex/jr3d/internal/modelload"
	"github.com/heimdex/jr3d/internal/restore"
	"github.com/heimdex/jr3d/internal/session"
	"github.com/heimdex/jr3d/internal/workspace"
)

const testToken = "test-token-0123456789"

type testEnv struct {
	cfg    ServerConfig
	router http.Handler
	ws     *workspace.Workspace
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := catalog.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), ConfigAuthToken, testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := workspace.New("Demo")
	ws.AddModel(&session.Model{
		ID:        "m1",
		Name:      "Hero",
		ModelFile: &session.Blob{Name: "hero.glb", Data: []byte("glTF-binary")},
		Transform: session.IdentityTransform(),
		Visible:   true,
		Opacity:   1,
	})

	resolver := fetch.NewResolver(fetch.NewStubFetcher(logger), 1, time.Second, logger)
	exporter := export.NewExporter(resolver, archive.DefaultCompressionLevel, logger)
	importer := restore.NewLoader(modelload.NewStubLoader(logger), animation.Extractor{}, logger)
	svc := catalog.NewService(repo, exporter, importer, ws, filepath.Join(t.TempDir(), "archives"), "0.1.0", logger)

	cfg := ServerConfig{
		CatalogService: svc,
		Downloads:      download.NewServer(logger),
		Repository:     repo,
		Workspace:      ws,
		Runner:         catalog.NewRunner(svc, logger),
		Logger:         logger,
		StartTime:      time.Now(),
		DeviceID:       "test-device",
		Version:        "0.1.0",
	}
	return &testEnv{cfg: cfg, router: NewRouter(cfg), ws: ws}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response JSON: %v (body %q)", err, rr.Body.String())
	}
	return body
}

func TestHealth_NoAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["device_id"] != "test-device" {
		t.Errorf("device_id = %v, want test-device", body["device_id"])
	}
}

func TestAuth_Required(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status with wrong token = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestProject_Summary(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/project", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["models"] != float64(1) {
		t.Errorf("models = %v, want 1", body["models"])
	}
	if _, ok := body["last_import"]; ok {
		t.Error("last_import should be omitted before any import")
	}
}

func TestStatus_AfterExport(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodPost, "/project/export", nil); rr.Code != http.StatusCreated {
		t.Fatalf("export status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr := env.do(t, http.MethodGet, "/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["state"] != "idle" {
		t.Errorf("state = %v, want idle", body["state"])
	}
	if body["exports_count"] != float64(1) {
		t.Errorf("exports_count = %v, want 1", body["exports_count"])
	}
	inbox, ok := body["inbox"].(map[string]interface{})
	if !ok {
		t.Fatal("inbox missing from status")
	}
	if inbox["paused"] != false {
		t.Errorf("inbox.paused = %v, want false", inbox["paused"])
	}
}

func TestArchives_ListGetDelete(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/project/export", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("export status = %d, body %s", rr.Code, rr.Body.String())
	}
	id := decodeJSONBody(t, rr)["archiveId"].(string)

	rr = env.do(t, http.MethodGet, "/archives?kind=export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list ArchivesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Archives) != 1 || list.Archives[0].ID != id {
		t.Fatalf("archives = %+v, want the one export", list.Archives)
	}
	if !list.Archives[0].Downloadable {
		t.Error("export should be downloadable")
	}
	if list.Archives[0].Size == "" {
		t.Error("human readable size missing")
	}

	if rr := env.do(t, http.MethodGet, "/archives/"+id, nil); rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/archives/"+id, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/archives/"+id, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestArchives_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodGet, "/archives?kind=scan", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("kind=scan status = %d, want 400", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/archives?limit=0", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", rr.Code)
	}
}

func TestArchives_Entries(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/project/export", nil)
	id := decodeJSONBody(t, rr)["archiveId"].(string)

	rr = env.do(t, http.MethodGet, "/archives/"+id+"/entries", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("entries status = %d, body %s", rr.Code, rr.Body.String())
	}
	var entries EntriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries.Missing) != 0 {
		t.Errorf("missing = %v, want none", entries.Missing)
	}

	var modelPath string
	for _, e := range entries.Entries {
		if filepath.Base(e.Path) == "hero.glb" {
			modelPath = e.Path
		}
	}
	if modelPath == "" {
		t.Fatalf("model entry not listed: %+v", entries.Entries)
	}

	rr = env.do(t, http.MethodGet, "/archives/"+id+"/entries/"+modelPath, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("entry status = %d", rr.Code)
	}
	if rr.Body.String() != "glTF-binary" {
		t.Errorf("entry body = %q", rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/archives/"+id+"/entries/models/nope.bin", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing entry status = %d, want 404", rr.Code)
	}
}

func TestInbox_PauseResume(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/inbox/pause", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pause status = %d", rr.Code)
	}
	if decodeJSONBody(t, rr)["paused"] != true {
		t.Error("inbox should report paused")
	}

	rr = env.do(t, http.MethodPost, "/inbox/resume", nil)
	if decodeJSONBody(t, rr)["paused"] != false {
		t.Error("inbox should report resumed")
	}
}

func TestMetrics_Exposed(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/project/export", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("jr3d_archive_operations_total")) {
		t.Error("operations counter missing from metrics output")
	}
}
