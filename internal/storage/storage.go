// Package storage defines the persistence contracts for session data. The
// cache tier (SQLite) is the primary read/write path; the authoritative tier
// lives behind the host platform's variable store.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a record absent from a store.
var ErrNotFound = errors.New("record not found")

// WorldStateRecord is one persisted world-state snapshot.
type WorldStateRecord struct {
	SessionID string
	Snapshot  []byte
	UpdatedAt time.Time
}

// NPCRecord is one persisted roster entry. Data holds the serialized NPC.
type NPCRecord struct {
	SessionID string
	NPCID     string
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// TurnRecord is one narrative turn in the session log.
type TurnRecord struct {
	SessionID string
	Seq       int64
	Role      string
	Content   string
	CreatedAt time.Time
}

// Turn roles recorded in the session log.
const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Cache is the fast local durable tier.
type Cache interface {
	SaveWorldState(ctx context.Context, record WorldStateRecord) error
	LoadWorldState(ctx context.Context, sessionID string) (WorldStateRecord, error)

	// ReplaceNPCs swaps the full roster for a session in one transaction.
	ReplaceNPCs(ctx context.Context, sessionID string, records []NPCRecord) error
	LoadNPCs(ctx context.Context, sessionID string) ([]NPCRecord, error)

	AppendTurn(ctx context.Context, record TurnRecord) (int64, error)
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)

	Close() error
}
