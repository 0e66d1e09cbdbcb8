package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lingclip/internal/services"
)

// Media is one registered media file.
type Media struct {
	ID              int64
	Title           string
	FilePath        string
	Kind            string
	DurationSeconds float64
	SourceLanguage  string
	TargetLanguage  string
	StructureEdited bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const mediaColumns = "id, title, file_path, kind, duration_seconds, source_language, target_language, structure_edited, created_at, updated_at"

// CreateMedia registers a media file and returns the stored record.
func (s *Store) CreateMedia(ctx context.Context, media Media) (Media, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		`INSERT INTO media (title, file_path, kind, duration_seconds, source_language, target_language)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		media.Title, media.FilePath, media.Kind, media.DurationSeconds,
		media.SourceLanguage, media.TargetLanguage)
	if err != nil {
		return Media{}, fmt.Errorf("insert media: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Media{}, fmt.Errorf("media insert id: %w", err)
	}
	return s.GetMedia(ctx, id)
}

// GetMedia loads one media record by id.
func (s *Store) GetMedia(ctx context.Context, id int64) (Media, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE id = ?", id)
	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Media{}, services.Wrap(services.ErrNotFound, "store", "get media",
			fmt.Sprintf("media %d", id), nil)
	}
	if err != nil {
		return Media{}, fmt.Errorf("get media %d: %w", id, err)
	}
	return media, nil
}

// ListMedia returns all media records ordered by id.
func (s *Store) ListMedia(ctx context.Context) ([]Media, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+mediaColumns+" FROM media ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Media
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, media)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return out, nil
}

// SetMediaDuration updates the probed duration of a media file.
func (s *Store) SetMediaDuration(ctx context.Context, id int64, seconds float64) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE media SET duration_seconds = ?, updated_at = datetime('now') WHERE id = ?",
		seconds, id)
	if err != nil {
		return fmt.Errorf("update media duration: %w", err)
	}
	return requireRowAffected(res, "store", "set duration", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(row rowScanner) (Media, error) {
	var (
		media              Media
		edited             int
		createdAt, updated string
	)
	err := row.Scan(&media.ID, &media.Title, &media.FilePath, &media.Kind,
		&media.DurationSeconds, &media.SourceLanguage, &media.TargetLanguage,
		&edited, &createdAt, &updated)
	if err != nil {
		return Media{}, err
	}
	media.StructureEdited = edited != 0
	media.CreatedAt = parseTimestamp(createdAt)
	media.UpdatedAt = parseTimestamp(updated)
	return media, nil
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func requireRowAffected(res interface{ RowsAffected() (int64, error) }, component, op string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, component, op, fmt.Sprintf("media %d", id), nil)
	}
	return nil
}
