package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
)

// LoadResult is the persisted state found for a session at startup.
type LoadResult struct {
	WorldState []byte
	NPCs       []storage.NPCRecord
	// FromCache reports which tier served the load.
	FromCache bool
}

// LoadSession restores session state, preferring the cache. When the
// authoritative store is missing keys the cache has, the cache copy is
// migrated up; when the cache is empty but the authority has state, the
// cache is reseeded from it. Returns storage.ErrNotFound when neither tier
// has the session.
func LoadSession(ctx context.Context, sessionID string, cache storage.Cache, authority hostvars.VarStore) (LoadResult, error) {
	if sessionID == "" {
		return LoadResult{}, fmt.Errorf("session id is required")
	}
	if cache == nil {
		return LoadResult{}, fmt.Errorf("cache store is required")
	}

	record, err := cache.LoadWorldState(ctx, sessionID)
	if err == nil {
		npcs, npcErr := cache.LoadNPCs(ctx, sessionID)
		if npcErr != nil {
			return LoadResult{}, fmt.Errorf("load cached npcs: %w", npcErr)
		}
		migrateToAuthority(ctx, sessionID, record.Snapshot, npcs, authority)
		return LoadResult{WorldState: record.Snapshot, NPCs: npcs, FromCache: true}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return LoadResult{}, fmt.Errorf("load cached world state: %w", err)
	}

	if authority == nil {
		return LoadResult{}, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	snapshot, err := authority.Get(ctx, sessionID, hostvars.KeyWorldState)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoadResult{}, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
		}
		return LoadResult{}, fmt.Errorf("load authoritative world state: %w", err)
	}

	npcs := authorityNPCs(ctx, sessionID, authority)
	seedCache(ctx, sessionID, snapshot, npcs, cache)
	return LoadResult{WorldState: snapshot, NPCs: npcs}, nil
}

// migrateToAuthority copies cached state up when the authority has none.
// Failures are logged, not fatal: play continues on the cache.
func migrateToAuthority(ctx context.Context, sessionID string, snapshot []byte, npcs []storage.NPCRecord, authority hostvars.VarStore) {
	if authority == nil {
		return
	}
	if _, err := authority.Get(ctx, sessionID, hostvars.KeyWorldState); err == nil {
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("check authoritative state: %v", err)
		return
	}
	if err := authority.Set(ctx, sessionID, hostvars.KeyWorldState, snapshot); err != nil {
		log.Printf("migrate world state to authority: %v", err)
		return
	}
	encoded, err := encodeNPCRecords(npcs)
	if err != nil {
		log.Printf("migrate npcs to authority: %v", err)
		return
	}
	if err := authority.Set(ctx, sessionID, hostvars.KeyNPCs, encoded); err != nil {
		log.Printf("migrate npcs to authority: %v", err)
	}
}

func authorityNPCs(ctx context.Context, sessionID string, authority hostvars.VarStore) []storage.NPCRecord {
	encoded, err := authority.Get(ctx, sessionID, hostvars.KeyNPCs)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load authoritative npcs: %v", err)
		}
		return nil
	}
	var entries []struct {
		NPCID string          `json:"npc_id"`
		Name  string          `json:"name"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(encoded, &entries); err != nil {
		log.Printf("decode authoritative npcs: %v", err)
		return nil
	}
	records := make([]storage.NPCRecord, len(entries))
	for i, entry := range entries {
		records[i] = storage.NPCRecord{
			SessionID: sessionID,
			NPCID:     entry.NPCID,
			Name:      entry.Name,
			Data:      entry.Data,
		}
	}
	return records
}

func seedCache(ctx context.Context, sessionID string, snapshot []byte, npcs []storage.NPCRecord, cache storage.Cache) {
	if err := cache.SaveWorldState(ctx, storage.WorldStateRecord{
		SessionID: sessionID,
		Snapshot:  snapshot,
		UpdatedAt: time.Now(),
	}); err != nil {
		log.Printf("seed cache world state: %v", err)
		return
	}
	if err := cache.ReplaceNPCs(ctx, sessionID, npcs); err != nil {
		log.Printf("seed cache npcs: %v", err)
	}
}
