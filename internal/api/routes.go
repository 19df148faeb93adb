package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/catalog"
	"github.com/heimdex/jr3d/internal/metrics"
)

const defaultListLimit = 50

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/project", projectHandler(cfg))
		r.Post("/project/export", exportHandler(cfg))
		r.Post("/project/import", importHandler(cfg))
		r.Get("/archives", listArchivesHandler(cfg))
		r.Get("/archives/{id}", getArchiveHandler(cfg))
		r.Delete("/archives/{id}", deleteArchiveHandler(cfg))
		r.Get("/archives/{id}/entries", listEntriesHandler(cfg))
		r.Post("/inbox/pause", inboxHandler(cfg, true))
		r.Post("/inbox/resume", inboxHandler(cfg, false))

		r.Group(func(r chi.Router) {
			r.Use(LoopbackGuard())
			r.Get("/archives/{id}/download", downloadHandler(cfg))
			r.Head("/archives/{id}/download", downloadHandler(cfg))
			r.Get("/archives/{id}/entries/*", entryHandler(cfg))
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := StatusResponse{State: "idle"}
		if cfg.Workspace != nil {
			resp.Project = cfg.Workspace.Summary()
		}
		resp.ExportsCount, _ = cfg.Repository.CountRecords(ctx, catalog.KindExport, catalog.StatusCompleted)
		resp.ImportsCount, _ = cfg.Repository.CountRecords(ctx, catalog.KindImport, catalog.StatusCompleted)
		resp.Running, _ = cfg.Repository.CountRecords(ctx, "", catalog.StatusRunning)

		recent, _ := cfg.Repository.ListRecords(ctx, "", 10)
		for _, rec := range recent {
			if rec.Status == catalog.StatusFailed {
				resp.LastError = rec.Error
				break
			}
		}

		if last, err := cfg.CatalogService.LastImport(ctx); err == nil && last != nil {
			resp.LastImportID = last.ID
			resp.LastImportName = last.ProjectName
		}

		if cfg.Runner != nil {
			processed, failed := cfg.Runner.Stats()
			resp.Inbox = &InboxResponse{
				Paused:    cfg.Runner.IsPaused(),
				Pending:   cfg.Runner.Pending(),
				Processed: processed,
				Failed:    failed,
			}
		}

		switch {
		case resp.Running > 0:
			resp.State = "busy"
		case resp.Inbox != nil && resp.Inbox.Paused:
			resp.State = "paused"
		case resp.LastError != "":
			resp.State = "error"
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func projectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ProjectResponse{Summary: cfg.Workspace.Summary()}
		if last, err := cfg.CatalogService.LastImport(r.Context()); err == nil && last != nil {
			ar := ArchiveToResponse(last)
			resp.LastImport = &ar
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listArchivesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.URL.Query().Get("kind")
		if kind != "" && kind != catalog.KindExport && kind != catalog.KindImport {
			WriteError(w, http.StatusBadRequest, "kind must be export or import", "BAD_REQUEST")
			return
		}

		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = n
		}

		records, err := cfg.CatalogService.GetRecords(r.Context(), kind, limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list archives", "INTERNAL_ERROR")
			return
		}

		resp := ArchivesResponse{Archives: make([]ArchiveResponse, len(records))}
		for i, rec := range records {
			resp.Archives[i] = ArchiveToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getArchiveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := lookupRecord(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ArchiveToResponse(rec))
	}
}

func deleteArchiveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := cfg.CatalogService.RemoveRecord(r.Context(), id)
		if errors.Is(err, catalog.ErrRecordNotFound) {
			WriteError(w, http.StatusNotFound, "archive not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := lookupRecord(cfg, w, r)
		if !ok {
			return
		}
		if !rec.Downloadable() {
			WriteError(w, http.StatusConflict, "archive has no stored file", "NOT_DOWNLOADABLE")
			return
		}

		if err := cfg.Downloads.ServeArchive(w, r, rec.Path, rec.FileName); err != nil {
			cfg.Logger.Error("download error", "error", err, "archive_id", rec.ID)
		}
	}
}

func listEntriesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := openRecordArchive(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, EntriesToResponse(a))
	}
}

func entryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := chi.URLParam(r, "*")
		if entry == "" {
			WriteError(w, http.StatusBadRequest, "entry path is required", "BAD_REQUEST")
			return
		}

		a, ok := openRecordArchive(cfg, w, r)
		if !ok {
			return
		}
		data, err := a.ReadFile(entry)
		if err != nil {
			WriteAppError(w, err, nil)
			return
		}

		if err := cfg.Downloads.ServeContent(w, r, entry, bytes.NewReader(data), int64(len(data))); err != nil {
			cfg.Logger.Error("entry download error", "error", err, "entry", entry)
		}
	}
}

func inboxHandler(cfg ServerConfig, pause bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusConflict, "inbox is not configured", "INBOX_DISABLED")
			return
		}
		if pause {
			cfg.Runner.Pause()
		} else {
			cfg.Runner.Resume()
		}
		processed, failed := cfg.Runner.Stats()
		WriteJSON(w, http.StatusOK, InboxResponse{
			Paused:    cfg.Runner.IsPaused(),
			Pending:   cfg.Runner.Pending(),
			Processed: processed,
			Failed:    failed,
		})
	}
}

func lookupRecord(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*catalog.Record, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "archive id required", "BAD_REQUEST")
		return nil, false
	}

	rec, err := cfg.CatalogService.GetRecord(r.Context(), id)
	if errors.Is(err, catalog.ErrRecordNotFound) {
		WriteError(w, http.StatusNotFound, "archive not found", "NOT_FOUND")
		return nil, false
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, false
	}
	return rec, true
}

func openRecordArchive(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*archive.Archive, bool) {
	rec, ok := lookupRecord(cfg, w, r)
	if !ok {
		return nil, false
	}
	if rec.Path == "" || rec.Status != catalog.StatusCompleted {
		WriteError(w, http.StatusConflict, "archive has no stored file", "NOT_DOWNLOADABLE")
		return nil, false
	}

	a, err := archive.OpenFile(rec.Path)
	if err != nil {
		WriteAppError(w, err, nil)
		return nil, false
	}
	return a, true
}

func readLimited(r *http.Request, w http.ResponseWriter, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxImportBytes
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}
