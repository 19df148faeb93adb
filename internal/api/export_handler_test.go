package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/export"
	"github.com/heimdex/jr3d/internal/projectfile"
)

func exportArchive(t *testing.T, env *testEnv, req export.ExportRequest) string {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	rr := env.do(t, http.MethodPost, "/project/export", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("export status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp export.ExportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode export response: %v", err)
	}
	return resp.ArchiveID
}

func TestExport_HappyPath(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(export.ExportRequest{ProjectName: "Scene: One"})
	rr := env.do(t, http.MethodPost, "/project/export", body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var resp export.ExportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "completed" {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if resp.FileName != "Scene_ One.jr3d" {
		t.Errorf("file name = %q, want Scene_ One.jr3d", resp.FileName)
	}
	if resp.Models != 1 {
		t.Errorf("models = %d, want 1", resp.Models)
	}
	if resp.Size <= 0 {
		t.Errorf("size = %d, want > 0", resp.Size)
	}
}

func TestExport_NothingSelected(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(export.ExportRequest{Options: &projectfile.ExportOptions{IncludeShader: true}})
	rr := env.do(t, http.MethodPost, "/project/export", body)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if code := decodeJSONBody(t, rr)["code"]; code != "NO_EXPORTABLE_CONTENT" {
		t.Errorf("code = %v, want NO_EXPORTABLE_CONTENT", code)
	}
}

func TestExport_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/project/export", []byte("{not json"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	id := exportArchive(t, env, export.ExportRequest{ProjectName: "Round Trip"})

	rr := env.do(t, http.MethodGet, "/archives/"+id+"/download", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("download status = %d", rr.Code)
	}
	data := rr.Body.Bytes()
	if _, err := archive.Open(data); err != nil {
		t.Fatalf("downloaded archive does not open: %v", err)
	}

	rr = env.do(t, http.MethodPost, "/project/import?name=round.jr3d", data)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if resp.Archive.FileName != "round.jr3d" {
		t.Errorf("file name = %q, want round.jr3d", resp.Archive.FileName)
	}
	if resp.Archive.ProjectName != "Round Trip" {
		t.Errorf("project name = %q, want Round Trip", resp.Archive.ProjectName)
	}
	newID, ok := resp.ModelIDMap["m1"]
	if !ok || newID == "" || newID == "m1" {
		t.Errorf("model id map = %v, want a fresh id for m1", resp.ModelIDMap)
	}
	if got := env.ws.Summary().Models; got != 1 {
		t.Errorf("workspace models = %d, want 1 after replace", got)
	}

	rr = env.do(t, http.MethodGet, "/project", nil)
	body := decodeJSONBody(t, rr)
	if _, ok := body["last_import"]; !ok {
		t.Error("project should report the last import")
	}
}

func TestImport_Corrupt(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/project/import", []byte("definitely not a zip"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if code := decodeJSONBody(t, rr)["code"]; code != "STRUCTURAL_ERROR" {
		t.Errorf("code = %v, want STRUCTURAL_ERROR", code)
	}
	if got := env.ws.Summary().Models; got != 1 {
		t.Errorf("workspace models = %d, a rejected archive must not touch the session", got)
	}
}

func TestImport_EmptyBody(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/project/import", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestImport_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.MaxImportBytes = 8
	env.router = NewRouter(env.cfg)

	rr := env.do(t, http.MethodPost, "/project/import", bytes.Repeat([]byte("x"), 64))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestDownload_Range(t *testing.T) {
	env := newTestEnv(t)
	id := exportArchive(t, env, export.ExportRequest{})

	req := httptest.NewRequest(http.MethodGet, "/archives/"+id+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Range", "bytes=0-3")
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusPartialContent)
	}
	if rr.Body.String() != "PK\x03\x04" {
		t.Errorf("first bytes = %q, want the zip signature", rr.Body.String())
	}
}

func TestDownload_RejectsRemoteClient(t *testing.T) {
	env := newTestEnv(t)
	id := exportArchive(t, env, export.ExportRequest{})

	req := httptest.NewRequest(http.MethodGet, "/archives/"+id+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.RemoteAddr = "10.0.0.7:5555"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestDownload_Head(t *testing.T) {
	env := newTestEnv(t)
	id := exportArchive(t, env, export.ExportRequest{})

	rr := env.do(t, http.MethodHead, "/archives/"+id+"/download", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", rr.Body.Len())
	}
	if rr.Header().Get("Content-Length") == "" {
		t.Error("HEAD should report Content-Length")
	}
}
