// Package sqlite provides a SQLite-backed implementation of the queue repository port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

// QueueKey is the well-known key the last build is stored under.
const QueueKey = "playlistData"

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.QueueRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// one connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) LoadPersistedQueue(ctx context.Context) (domain.PersistedQueue, error) {
	var (
		q         domain.PersistedQueue
		title     sql.NullString
		thumbnail sql.NullString
		createdAt string
	)
	row := a.db.QueryRowContext(ctx,
		"SELECT prompt, playlist_title, playlist_thumbnail, created_at FROM queues WHERE key = ?", QueueKey)
	if err := row.Scan(&q.Prompt, &title, &thumbnail, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PersistedQueue{}, domain.ErrNotFound
		}
		return domain.PersistedQueue{}, fmt.Errorf("failed to load queue: %w", err)
	}
	if title.Valid {
		q.PlaylistInfo = &domain.CollectionInfo{Title: title.String, Thumbnail: thumbnail.String}
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.PersistedQueue{}, fmt.Errorf("failed to parse queue timestamp: %w", err)
	}
	q.CreatedAt = ts

	rows, err := a.db.QueryContext(ctx, `
		SELECT title, artist, video_id, thumbnail
		FROM queue_tracks
		WHERE queue_key = ?
		ORDER BY position ASC
	`, QueueKey)
	if err != nil {
		return domain.PersistedQueue{}, fmt.Errorf("failed to load queue tracks: %w", err)
	}
	defer rows.Close()

	q.Songs = []domain.Track{}
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(&t.Title, &t.Artist, &t.MediaID, &t.ThumbnailURL); err != nil {
			return domain.PersistedQueue{}, fmt.Errorf("failed to scan queue track: %w", err)
		}
		q.Songs = append(q.Songs, t)
	}
	if err := rows.Err(); err != nil {
		return domain.PersistedQueue{}, fmt.Errorf("failed to iterate queue tracks: %w", err)
	}

	return q, nil
}

// SavePersistedQueue overwrites the stored record in one transaction.
func (a *Adapter) SavePersistedQueue(ctx context.Context, q domain.PersistedQueue) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var title, thumbnail sql.NullString
	if q.PlaylistInfo != nil {
		title = sql.NullString{String: q.PlaylistInfo.Title, Valid: true}
		thumbnail = sql.NullString{String: q.PlaylistInfo.Thumbnail, Valid: true}
	}

	upsert := `
		INSERT INTO queues (key, prompt, playlist_title, playlist_thumbnail, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			prompt=excluded.prompt,
			playlist_title=excluded.playlist_title,
			playlist_thumbnail=excluded.playlist_thumbnail,
			created_at=excluded.created_at;
	`
	createdAt := q.CreatedAt.UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, upsert, QueueKey, q.Prompt, title, thumbnail, createdAt); err != nil {
		return fmt.Errorf("failed to save queue metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM queue_tracks WHERE queue_key = ?", QueueKey); err != nil {
		return fmt.Errorf("failed to clear old tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO queue_tracks (queue_key, position, title, artist, video_id, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range q.Songs {
		if _, err := stmt.ExecContext(ctx, QueueKey, i, t.Title, t.Artist, t.MediaID, t.ThumbnailURL); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.MediaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// ClearPersistedQueue removes the record. Clearing an empty store is not an error.
func (a *Adapter) ClearPersistedQueue(ctx context.Context) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM queue_tracks WHERE queue_key = ?", QueueKey); err != nil {
		return fmt.Errorf("failed to clear queue tracks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM queues WHERE key = ?", QueueKey); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS queues (
		key TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		playlist_title TEXT,
		playlist_thumbnail TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS queue_tracks (
		queue_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		video_id TEXT NOT NULL,
		thumbnail TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (queue_key, position),
		FOREIGN KEY(queue_key) REFERENCES queues(key)
	);
	`
	_, err := a.db.Exec(query)
	return err
}
