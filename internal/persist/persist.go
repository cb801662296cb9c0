// Package persist reconciles session state between the fast SQLite cache and
// the slow host-authoritative variable store.
//
// Mutations mark the reconciler dirty and schedule a debounced cache write,
// so bursts of rapid changes coalesce into one write. A periodic sync pushes
// the cache to the authoritative store regardless of debounce state, bounding
// staleness. Teardown flushes any pending write synchronously.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
)

// Phase is the reconciler write-path state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhasePendingWrite Phase = "pending_write"
	PhaseWriting      Phase = "writing"
	PhaseSynced       Phase = "synced"
)

// Defaults match the cadence of interactive play: quick enough that a closed
// session rarely loses more than one turn, slow enough to coalesce bursts.
const (
	DefaultDebounce     = 2 * time.Second
	DefaultSyncInterval = 60 * time.Second
	DefaultMaxRetries   = 3
)

// Snapshot is everything the session persists as one unit.
type Snapshot struct {
	WorldState []byte
	NPCs       []storage.NPCRecord
}

// SnapshotFunc captures the current session state. It is called on the
// reconciler's write path and must not block on the session's own turn loop.
type SnapshotFunc func() (Snapshot, error)

// Reconciler drives the dual-store write path for one session.
type Reconciler struct {
	sessionID string
	cache     storage.Cache
	authority hostvars.VarStore
	bus       *events.Bus
	snapshot  SnapshotFunc

	debounce     time.Duration
	syncInterval time.Duration
	maxRetries   int

	mu      sync.Mutex
	phase   Phase
	retries int
	timer   *time.Timer
	// writing is non-nil while a cache write is in flight and is closed when
	// it finishes, so Flush can wait for it.
	writing chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDebounce overrides the cache-write debounce window.
func WithDebounce(d time.Duration) Option {
	return func(r *Reconciler) { r.debounce = d }
}

// WithSyncInterval overrides the authoritative sync cadence.
func WithSyncInterval(d time.Duration) Option {
	return func(r *Reconciler) { r.syncInterval = d }
}

// WithMaxRetries bounds failed-write retries.
func WithMaxRetries(n int) Option {
	return func(r *Reconciler) { r.maxRetries = n }
}

// New builds a reconciler. authority may be nil for cache-only deployments.
func New(sessionID string, cache storage.Cache, authority hostvars.VarStore, bus *events.Bus, snapshot SnapshotFunc, opts ...Option) (*Reconciler, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot func is required")
	}
	r := &Reconciler{
		sessionID:    sessionID,
		cache:        cache,
		authority:    authority,
		bus:          bus,
		snapshot:     snapshot,
		debounce:     DefaultDebounce,
		syncInterval: DefaultSyncInterval,
		maxRetries:   DefaultMaxRetries,
		phase:        PhaseIdle,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Phase returns the current write-path phase.
func (r *Reconciler) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// MarkDirty records a state mutation and (re)arms the debounced cache write.
func (r *Reconciler) MarkDirty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhasePendingWrite
	r.retries = 0
	r.armTimerLocked()
}

func (r *Reconciler) armTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		if err := r.writeCache(context.Background()); err != nil {
			log.Printf("debounced cache write: %v", err)
		}
	})
}

// writeCache captures a snapshot and writes it to the cache tier. On failure
// the phase returns to PendingWrite and the write is retried a bounded
// number of times.
func (r *Reconciler) writeCache(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhasePendingWrite {
		r.mu.Unlock()
		return nil
	}
	r.phase = PhaseWriting
	inflight := make(chan struct{})
	r.writing = inflight
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	err := r.persistSnapshot(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	close(inflight)
	r.writing = nil
	if err != nil {
		r.phase = PhasePendingWrite
		r.retries++
		if r.retries < r.maxRetries {
			r.armTimerLocked()
		}
		return err
	}
	r.phase = PhaseSynced
	r.retries = 0
	return nil
}

func (r *Reconciler) persistSnapshot(ctx context.Context) error {
	snap, err := r.snapshot()
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}
	if err := r.cache.SaveWorldState(ctx, storage.WorldStateRecord{
		SessionID: r.sessionID,
		Snapshot:  snap.WorldState,
		UpdatedAt: time.Now(),
	}); err != nil {
		return err
	}
	return r.cache.ReplaceNPCs(ctx, r.sessionID, snap.NPCs)
}

// Flush synchronously writes any pending state to the cache and waits for
// any write already in flight. Called on teardown before the session
// unmounts.
func (r *Reconciler) Flush(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		inflight := r.writing
		pending := r.phase == PhasePendingWrite
		r.mu.Unlock()

		if inflight != nil {
			select {
			case <-inflight:
			case <-ctx.Done():
				return ctx.Err()
			}
			// The finished write may have failed back to PendingWrite.
			continue
		}
		if !pending {
			return nil
		}
		return r.writeCache(ctx)
	}
}

// SyncAuthority pushes the cached state to the authoritative store and
// publishes a data.synced event. A nil authority store makes this a no-op.
func (r *Reconciler) SyncAuthority(ctx context.Context) error {
	if err := r.Flush(ctx); err != nil {
		return err
	}
	if r.authority == nil {
		return nil
	}

	record, err := r.cache.LoadWorldState(ctx, r.sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read cache for sync: %w", err)
	}
	if err := r.authority.Set(ctx, r.sessionID, hostvars.KeyWorldState, record.Snapshot); err != nil {
		return fmt.Errorf("sync world state: %w", err)
	}

	npcs, err := r.cache.LoadNPCs(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("read npcs for sync: %w", err)
	}
	encoded, err := encodeNPCRecords(npcs)
	if err != nil {
		return err
	}
	if err := r.authority.Set(ctx, r.sessionID, hostvars.KeyNPCs, encoded); err != nil {
		return fmt.Errorf("sync npcs: %w", err)
	}

	if r.bus != nil {
		r.bus.Publish(events.Event{Topic: events.TopicDataSynced, SessionID: r.sessionID})
	}
	return nil
}

// Run drives the periodic authoritative sync until ctx is cancelled or
// Close is called.
func (r *Reconciler) Run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			if err := r.SyncAuthority(ctx); err != nil {
				log.Printf("periodic sync: %v", err)
			}
		}
	}
}

// Close flushes pending writes, performs a final authoritative sync, and
// stops the periodic loop.
func (r *Reconciler) Close(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stop) })
	return r.SyncAuthority(ctx)
}

func encodeNPCRecords(records []storage.NPCRecord) ([]byte, error) {
	type entry struct {
		NPCID string          `json:"npc_id"`
		Name  string          `json:"name"`
		Data  json.RawMessage `json:"data"`
	}
	entries := make([]entry, len(records))
	for i, record := range records {
		entries[i] = entry{NPCID: record.NPCID, Name: record.Name, Data: record.Data}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode npc records: %w", err)
	}
	return encoded, nil
}
