package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/larkspur-games/chronicle/internal/storage"
)

// AppendTurn appends one narrative turn and returns its sequence number.
// Sequence numbers are per-session and strictly increasing; the session layer
// is the only writer, so the max+1 read is not racy.
func (s *Store) AppendTurn(ctx context.Context, record storage.TurnRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	sessionID := strings.TrimSpace(record.SessionID)
	if sessionID == "" {
		return 0, fmt.Errorf("session id is required")
	}
	role := strings.TrimSpace(record.Role)
	if role != storage.TurnRoleUser && role != storage.TurnRoleAssistant {
		return 0, fmt.Errorf("turn role must be %s or %s", storage.TurnRoleUser, storage.TurnRoleAssistant)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var seq int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turn_log WHERE session_id = ?`,
		sessionID,
	)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next turn seq: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO turn_log (session_id, seq, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID,
		seq,
		role,
		record.Content,
		toMillis(createdAt),
	); err != nil {
		return 0, fmt.Errorf("append turn: %w", err)
	}
	return seq, nil
}

// RecentTurns returns up to limit most recent turns in ascending order.
func (s *Store) RecentTurns(ctx context.Context, sessionID string, limit int) ([]storage.TurnRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, role, content, created_at FROM turn_log
		 WHERE session_id = ? ORDER BY seq DESC LIMIT ?`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load recent turns: %w", err)
	}
	defer rows.Close()

	var records []storage.TurnRecord
	for rows.Next() {
		record := storage.TurnRecord{SessionID: sessionID}
		var createdAt int64
		if err := rows.Scan(&record.Seq, &record.Role, &record.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
