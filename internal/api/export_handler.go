package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"

	apperrors "github.com/heimdex/jr3d/internal/errors"
	"github.com/heimdex/jr3d/internal/export"
	"github.com/heimdex/jr3d/internal/projectfile"
)

const defaultUploadName = "upload" + projectfile.FileExtension

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
		}

		if req.Options != nil {
			if err := req.Options.Validate(); err != nil {
				WriteAppError(w, err, nil)
				return
			}
		}

		rec, err := cfg.CatalogService.ExportProject(r.Context(), req.ProjectName, req.Options)
		if err != nil {
			var warnings []string
			if rec != nil {
				warnings = rec.Warnings
			}
			WriteAppError(w, err, warnings)
			return
		}

		WriteJSON(w, http.StatusCreated, export.ExportResponse{
			Status:    rec.Status,
			ArchiveID: rec.ID,
			FileName:  rec.FileName,
			Size:      int(rec.SizeBytes),
			Models:    rec.ModelCount,
			Warnings:  rec.Warnings,
		})
	}
}

// importHandler restores the archive sent as the raw request body. The
// file name is taken from the name query parameter.
func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readLimited(r, w, cfg.MaxImportBytes)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "archive too large", "TOO_LARGE")
				return
			}
			WriteError(w, http.StatusBadRequest, "failed to read request body", "BAD_REQUEST")
			return
		}
		if len(data) == 0 {
			WriteError(w, http.StatusBadRequest, "archive body is required", "BAD_REQUEST")
			return
		}

		name := path.Base(r.URL.Query().Get("name"))
		if name == "." || name == "/" {
			name = defaultUploadName
		}

		rec, res, err := cfg.CatalogService.ImportArchive(r.Context(), name, data, nil)
		if err != nil {
			var warnings []string
			if res != nil {
				warnings = res.Warnings
			}
			if apperrors.CodeOf(err) == apperrors.CodeUnknown {
				err = apperrors.Wrap(apperrors.CodeInternal, "import failed", err)
			}
			WriteAppError(w, err, warnings)
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{
			Archive:    ArchiveToResponse(rec),
			ModelIDMap: res.ModelIDMap,
			ClipIDMap:  res.ClipIDMap,
			SpineIDMap: res.SpineIDMap,
			Warnings:   rec.Warnings,
		})
	}
}
