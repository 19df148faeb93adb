package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimdex/jr3d/internal/db"
)

const timeLayout = db.TimeLayout

type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) error
	GetRecord(ctx context.Context, id string) (*Record, error)
	ListRecords(ctx context.Context, kind string, limit int) ([]*Record, error)
	UpdateRecord(ctx context.Context, rec *Record) error
	DeleteRecord(ctx context.Context, id string) error
	CountRecords(ctx context.Context, kind, status string) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

const recordColumns = `id, kind, status, file_name, project_name, path, size_bytes, model_count,
	has_animations, format_version, warnings, error, created_at, updated_at`

func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec *Record) error {
	warnings, err := encodeWarnings(rec.Warnings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO archives (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Kind, rec.Status, rec.FileName, rec.ProjectName, nullString(rec.Path),
		rec.SizeBytes, rec.ModelCount, boolToInt(rec.HasAnimations), rec.FormatVersion,
		warnings, nullString(rec.Error), formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM archives WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRecords returns the newest records first. An empty kind lists both
// kinds; a non-positive limit lists everything.
func (r *SQLiteRepository) ListRecords(ctx context.Context, kind string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM archives
		WHERE (? = '' OR kind = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec *Record) error {
	warnings, err := encodeWarnings(rec.Warnings)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE archives SET status = ?, file_name = ?, project_name = ?, path = ?, size_bytes = ?,
			model_count = ?, has_animations = ?, format_version = ?, warnings = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, rec.Status, rec.FileName, rec.ProjectName, nullString(rec.Path), rec.SizeBytes,
		rec.ModelCount, boolToInt(rec.HasAnimations), rec.FormatVersion, warnings,
		nullString(rec.Error), formatTime(rec.UpdatedAt), rec.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s not found", rec.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM archives WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountRecords(ctx context.Context, kind, status string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM archives WHERE (? = '' OR kind = ?) AND (? = '' OR status = ?)
	`, kind, kind, status, status).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var path, errMsg sql.NullString
	var hasAnimations int
	var warnings, createdAt, updatedAt string

	err := row.Scan(&rec.ID, &rec.Kind, &rec.Status, &rec.FileName, &rec.ProjectName, &path,
		&rec.SizeBytes, &rec.ModelCount, &hasAnimations, &rec.FormatVersion, &warnings, &errMsg,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.Path = path.String
	rec.Error = errMsg.String
	rec.HasAnimations = hasAnimations == 1
	if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings of %s: %w", rec.ID, err)
	}
	if rec.Warnings == nil {
		rec.Warnings = []string{}
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &rec, nil
}

func encodeWarnings(w []string) (string, error) {
	if w == nil {
		w = []string{}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode warnings: %w", err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
