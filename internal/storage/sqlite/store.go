// Package sqlite provides the SQLite-backed session cache tier.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	sqlitemigrate "github.com/larkspur-games/chronicle/internal/platform/storage/sqlitemigrate"
	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/sqlite/migrations"
)

// Store persists session state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite cache store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveWorldState upserts the snapshot for a session.
func (s *Store) SaveWorldState(ctx context.Context, record storage.WorldStateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID := strings.TrimSpace(record.SessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if len(record.Snapshot) == 0 {
		return fmt.Errorf("snapshot is required")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO world_states (session_id, snapshot, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   snapshot = excluded.snapshot,
		   updated_at = excluded.updated_at`,
		sessionID,
		record.Snapshot,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save world state: %w", err)
	}
	return nil
}

// LoadWorldState reads the snapshot for a session.
func (s *Store) LoadWorldState(ctx context.Context, sessionID string) (storage.WorldStateRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.WorldStateRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.WorldStateRecord{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.WorldStateRecord{}, fmt.Errorf("session id is required")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT snapshot, updated_at FROM world_states WHERE session_id = ?`,
		sessionID,
	)
	var snapshot []byte
	var updatedAt int64
	if err := row.Scan(&snapshot, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.WorldStateRecord{}, fmt.Errorf("world state %s: %w", sessionID, storage.ErrNotFound)
		}
		return storage.WorldStateRecord{}, fmt.Errorf("load world state: %w", err)
	}
	return storage.WorldStateRecord{
		SessionID: sessionID,
		Snapshot:  snapshot,
		UpdatedAt: fromMillis(updatedAt),
	}, nil
}
