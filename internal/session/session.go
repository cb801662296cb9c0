// Package session owns one play session: its world state, NPC roster, and
// the turn-processing pipeline that keeps both in sync with the narrative.
//
// Each turn runs single-writer: extract explicit command blocks, infer
// heuristic commands from the clean narrative, apply both in order, detect
// NPC tags, merge candidates into the roster, run the eviction pass, and
// mark the reconciler dirty exactly once.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/text/message"

	"github.com/larkspur-games/chronicle/internal/command"
	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/heuristic"
	"github.com/larkspur-games/chronicle/internal/npc"
	"github.com/larkspur-games/chronicle/internal/persist"
	"github.com/larkspur-games/chronicle/internal/state"
	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
)

// ErrProfileRequired indicates no persisted state exists and no character
// profile was supplied to seed one. This is the only fatal session error;
// everything else degrades.
var ErrProfileRequired = errors.New("character profile required for new session")

// Config wires a session's dependencies.
type Config struct {
	SessionID string
	Cache     storage.Cache
	Authority hostvars.VarStore
	Bus       *events.Bus
	Printer   *message.Printer
	// Profile seeds a new session when no persisted state exists.
	Profile *state.Profile
	// HistoryWindow bounds the eviction lookback. Zero means the default.
	HistoryWindow int
	// PersistOptions tune the reconciler, mainly for tests.
	PersistOptions []persist.Option
}

// Session is one live play session.
type Session struct {
	id string

	// mu guards world. The reconciler snapshots from its own goroutines, so
	// every world mutation and export holds it. The roster carries its own
	// lock.
	mu            sync.Mutex
	world         *state.WorldState
	roster        *npc.Roster
	reducer       *state.Reducer
	extractor     *command.Extractor
	analyzer      *heuristic.Analyzer
	reconciler    *persist.Reconciler
	cache         storage.Cache
	bus           *events.Bus
	historyWindow int
	restored      bool
}

// TurnResult reports everything one processed turn produced.
type TurnResult struct {
	CleanContent  string
	Notifications []string
	// CommandErrors holds extraction failures and rejected commands; each is
	// surfaced, never fatal.
	CommandErrors []error
	ParseErrors   []error
	NewNPCs       []string
	UpdatedNPCs   []string
	EvictedNPCs   []string
}

// Open restores a session from persistence or seeds one from the profile.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	window := cfg.HistoryWindow
	if window <= 0 {
		window = npc.DefaultCleanupWindow
	}

	s := &Session{
		id:            cfg.SessionID,
		roster:        npc.NewRoster(cfg.SessionID, bus),
		reducer:       state.NewReducer(cfg.Printer),
		extractor:     command.NewExtractor(command.NewRegistry()),
		analyzer:      heuristic.NewAnalyzer(),
		cache:         cfg.Cache,
		bus:           bus,
		historyWindow: window,
	}

	loaded, err := persist.LoadSession(ctx, cfg.SessionID, cfg.Cache, cfg.Authority)
	switch {
	case err == nil:
		world, loadErr := state.Load(loaded.WorldState)
		if loadErr != nil {
			return nil, fmt.Errorf("restore session %s: %w", cfg.SessionID, loadErr)
		}
		s.world = world
		s.roster.Load(decodeNPCRecords(loaded.NPCs))
		s.restored = true
	case errors.Is(err, storage.ErrNotFound):
		if cfg.Profile == nil {
			return nil, fmt.Errorf("session %s: %w", cfg.SessionID, ErrProfileRequired)
		}
		world, seedErr := state.NewFromProfile(*cfg.Profile, time.Now())
		if seedErr != nil {
			return nil, fmt.Errorf("session %s: %w", cfg.SessionID, seedErr)
		}
		s.world = world
	default:
		return nil, err
	}

	reconciler, err := persist.New(cfg.SessionID, cfg.Cache, cfg.Authority, bus, s.snapshot, cfg.PersistOptions...)
	if err != nil {
		return nil, err
	}
	s.reconciler = reconciler
	go reconciler.Run(context.Background())
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Restored reports whether the session came from persisted state rather
// than a fresh profile.
func (s *Session) Restored() bool { return s.restored }

// World returns the live world state. For single-goroutine use such as
// tests; concurrent readers go through ExportWorld.
func (s *Session) World() *state.WorldState { return s.world }

// ExportWorld serializes the current world state.
func (s *Session) ExportWorld() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Export()
}

// Roster returns the live NPC roster.
func (s *Session) Roster() *npc.Roster { return s.roster }

// Reconciler exposes the persistence reconciler for lifecycle wiring.
func (s *Session) Reconciler() *persist.Reconciler { return s.reconciler }

// RecordUserTurn appends the player's input to the turn log. User turns
// count toward NPC mention recency.
func (s *Session) RecordUserTurn(ctx context.Context, content string) error {
	_, err := s.cache.AppendTurn(ctx, storage.TurnRecord{
		SessionID: s.id,
		Role:      storage.TurnRoleUser,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("record user turn: %w", err)
	}
	return nil
}

// ProcessTurn runs the full pipeline over one generated turn.
func (s *Session) ProcessTurn(ctx context.Context, generated string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &TurnResult{}

	extraction := s.extractor.Extract(generated)
	result.CleanContent = extraction.CleanContent
	result.CommandErrors = append(result.CommandErrors, extraction.Errors...)

	// Explicit-block commands first, heuristic commands appended after.
	cmds := extraction.Commands
	cmds = append(cmds, s.analyzer.Analyze(extraction.CleanContent)...)

	for _, outcome := range s.reducer.ApplyAll(s.world, cmds) {
		if outcome.Err != nil {
			result.CommandErrors = append(result.CommandErrors, outcome.Err)
			continue
		}
		result.Notifications = append(result.Notifications, outcome.Notification)
	}

	candidates, parseErrs := npc.ParseTags(generated)
	result.ParseErrors = parseErrs
	var sameTurnNames []string
	for _, candidate := range candidates {
		outcome, record, err := s.roster.AddOrUpdate(candidate)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, err)
			continue
		}
		sameTurnNames = append(sameTurnNames, record.Name)
		if outcome == npc.OutcomeNew {
			result.NewNPCs = append(result.NewNPCs, record.Name)
		} else {
			result.UpdatedNPCs = append(result.UpdatedNPCs, record.Name)
		}
	}

	if _, err := s.cache.AppendTurn(ctx, storage.TurnRecord{
		SessionID: s.id,
		Role:      storage.TurnRoleAssistant,
		Content:   generated,
	}); err != nil {
		// The turn still applied; losing one log row only weakens recency.
		log.Printf("append assistant turn: %v", err)
	}

	history, err := s.cache.RecentTurns(ctx, s.id, s.historyWindow)
	if err != nil {
		log.Printf("load turn history: %v", err)
	} else {
		texts := make([]string, len(history))
		for i, turn := range history {
			texts[i] = turn.Content
		}
		result.EvictedNPCs = s.roster.AutoCleanupAbsent(texts, s.historyWindow, sameTurnNames)
	}

	s.reconciler.MarkDirty()
	return result, nil
}

// Close flushes pending writes and releases the session.
func (s *Session) Close(ctx context.Context) error {
	return s.reconciler.Close(ctx)
}

// snapshot captures the session for the persistence reconciler. It runs on
// the reconciler's goroutines, hence the lock.
func (s *Session) snapshot() (persist.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	worldData, err := s.world.Export()
	if err != nil {
		return persist.Snapshot{}, err
	}
	roster := s.roster.List()
	records := make([]storage.NPCRecord, 0, len(roster))
	for _, record := range roster {
		data, err := json.Marshal(record)
		if err != nil {
			return persist.Snapshot{}, fmt.Errorf("encode npc %s: %w", record.Name, err)
		}
		records = append(records, storage.NPCRecord{
			SessionID: s.id,
			NPCID:     record.ID,
			Name:      record.Name,
			Data:      data,
			UpdatedAt: record.LastSeen,
		})
	}
	return persist.Snapshot{WorldState: worldData, NPCs: records}, nil
}

func decodeNPCRecords(records []storage.NPCRecord) []npc.NPC {
	decoded := make([]npc.NPC, 0, len(records))
	for _, record := range records {
		var entry npc.NPC
		if err := json.Unmarshal(record.Data, &entry); err != nil {
			log.Printf("decode persisted npc %s: %v", record.Name, err)
			continue
		}
		decoded = append(decoded, entry)
	}
	return decoded
}
