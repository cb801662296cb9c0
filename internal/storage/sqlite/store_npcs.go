package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/larkspur-games/chronicle/internal/storage"
)

// ReplaceNPCs swaps the full roster for a session in one transaction, so a
// crash mid-write never leaves a mix of old and new records.
func (s *Store) ReplaceNPCs(ctx context.Context, sessionID string, records []storage.NPCRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin npc replace: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM npcs WHERE session_id = ?`, sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear npcs: %w", err)
	}
	for _, record := range records {
		npcID := strings.TrimSpace(record.NPCID)
		if npcID == "" {
			_ = tx.Rollback()
			return fmt.Errorf("npc id is required")
		}
		updatedAt := record.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO npcs (session_id, npc_id, name, data, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			sessionID,
			npcID,
			record.Name,
			record.Data,
			toMillis(updatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert npc %s: %w", npcID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit npc replace: %w", err)
	}
	return nil
}

// LoadNPCs reads the roster for a session ordered by name.
func (s *Store) LoadNPCs(ctx context.Context, sessionID string) ([]storage.NPCRecord, error) {
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

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT npc_id, name, data, updated_at FROM npcs WHERE session_id = ? ORDER BY name`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load npcs: %w", err)
	}
	defer rows.Close()

	var records []storage.NPCRecord
	for rows.Next() {
		record := storage.NPCRecord{SessionID: sessionID}
		var updatedAt int64
		if err := rows.Scan(&record.NPCID, &record.Name, &record.Data, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan npc: %w", err)
		}
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate npcs: %w", err)
	}
	return records, nil
}
