package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
)

type fakeCache struct {
	mu        sync.Mutex
	world     map[string]storage.WorldStateRecord
	npcs      map[string][]storage.NPCRecord
	saveErr   error
	saveCount int
	// saveGate, when set, blocks SaveWorldState until the channel closes.
	saveGate chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		world: make(map[string]storage.WorldStateRecord),
		npcs:  make(map[string][]storage.NPCRecord),
	}
}

func (f *fakeCache) SaveWorldState(ctx context.Context, record storage.WorldStateRecord) error {
	f.mu.Lock()
	gate := f.saveGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCount++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.world[record.SessionID] = record
	return nil
}

func (f *fakeCache) LoadWorldState(ctx context.Context, sessionID string) (storage.WorldStateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.world[sessionID]
	if !ok {
		return storage.WorldStateRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeCache) ReplaceNPCs(ctx context.Context, sessionID string, records []storage.NPCRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.npcs[sessionID] = append([]storage.NPCRecord(nil), records...)
	return nil
}

func (f *fakeCache) LoadNPCs(ctx context.Context, sessionID string) ([]storage.NPCRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.NPCRecord(nil), f.npcs[sessionID]...), nil
}

func (f *fakeCache) AppendTurn(ctx context.Context, record storage.TurnRecord) (int64, error) {
	return 0, nil
}

func (f *fakeCache) RecentTurns(ctx context.Context, sessionID string, limit int) ([]storage.TurnRecord, error) {
	return nil, nil
}

func (f *fakeCache) Close() error { return nil }

func (f *fakeCache) saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCount
}

func staticSnapshot(data string) SnapshotFunc {
	return func() (Snapshot, error) {
		return Snapshot{WorldState: []byte(data)}, nil
	}
}

func waitForPhase(t *testing.T, r *Reconciler, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %q, at %q", want, r.Phase())
}

func TestDebouncedWriteReachesSynced(t *testing.T) {
	cache := newFakeCache()
	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	if r.Phase() != PhaseIdle {
		t.Fatalf("expected idle start, got %q", r.Phase())
	}

	r.MarkDirty()
	if r.Phase() != PhasePendingWrite {
		t.Fatalf("expected pending after mark, got %q", r.Phase())
	}
	waitForPhase(t, r, PhaseSynced)

	record, err := cache.LoadWorldState(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(record.Snapshot) != "snapshot" {
		t.Fatalf("expected snapshot written, got %q", record.Snapshot)
	}
}

func TestRapidMarksCoalesceIntoOneWrite(t *testing.T) {
	cache := newFakeCache()
	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	for i := 0; i < 10; i++ {
		r.MarkDirty()
		time.Sleep(time.Millisecond)
	}
	waitForPhase(t, r, PhaseSynced)

	if saves := cache.saves(); saves != 1 {
		t.Fatalf("expected one coalesced write, got %d", saves)
	}
}

func TestFlushWritesPendingSynchronously(t *testing.T) {
	cache := newFakeCache()
	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(time.Hour))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	r.MarkDirty()
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if r.Phase() != PhaseSynced {
		t.Fatalf("expected synced after flush, got %q", r.Phase())
	}
	if _, err := cache.LoadWorldState(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected cached state after flush: %v", err)
	}
}

func TestFlushWaitsForInFlightWrite(t *testing.T) {
	cache := newFakeCache()
	gate := make(chan struct{})
	cache.saveGate = gate

	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(time.Millisecond))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	// The debounced write fires and blocks inside the cache save.
	r.MarkDirty()
	waitForPhase(t, r, PhaseWriting)

	flushed := make(chan error, 1)
	go func() { flushed <- r.Flush(context.Background()) }()

	select {
	case err := <-flushed:
		t.Fatalf("flush returned before the write finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case err := <-flushed:
		if err != nil {
			t.Fatalf("flush: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("flush did not return after the write finished")
	}
	if r.Phase() != PhaseSynced {
		t.Fatalf("expected synced after flush, got %q", r.Phase())
	}
	if _, err := cache.LoadWorldState(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected cached state after flush: %v", err)
	}
}

func TestFlushCancelledWhileWaiting(t *testing.T) {
	cache := newFakeCache()
	gate := make(chan struct{})
	cache.saveGate = gate
	defer close(gate)

	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(time.Millisecond))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	r.MarkDirty()
	waitForPhase(t, r, PhaseWriting)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Flush(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFlushWithoutPendingIsNoOp(t *testing.T) {
	cache := newFakeCache()
	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if saves := cache.saves(); saves != 0 {
		t.Fatalf("expected no writes, got %d", saves)
	}
}

func TestFailedWriteRetriesAreBounded(t *testing.T) {
	cache := newFakeCache()
	cache.saveErr = errors.New("disk full")
	r, err := New("session-1", cache, nil, nil, staticSnapshot("snapshot"),
		WithDebounce(5*time.Millisecond),
		WithMaxRetries(3))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	r.MarkDirty()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && cache.saves() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	// Let any extra timer fire if one were (incorrectly) armed.
	time.Sleep(50 * time.Millisecond)

	if saves := cache.saves(); saves != 3 {
		t.Fatalf("expected exactly 3 bounded attempts, got %d", saves)
	}
	if r.Phase() != PhasePendingWrite {
		t.Fatalf("expected pending after exhausted retries, got %q", r.Phase())
	}
}

func TestSyncAuthorityPushesCacheAndPublishes(t *testing.T) {
	cache := newFakeCache()
	authority := hostvars.NewMemory()
	bus := events.NewBus()

	var synced bool
	bus.Subscribe(events.TopicDataSynced, func(events.Event) { synced = true })

	r, err := New("session-1", cache, authority, bus, staticSnapshot("snapshot"),
		WithDebounce(time.Hour))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	r.MarkDirty()
	if err := r.SyncAuthority(context.Background()); err != nil {
		t.Fatalf("sync authority: %v", err)
	}

	value, err := authority.Get(context.Background(), "session-1", hostvars.KeyWorldState)
	if err != nil {
		t.Fatalf("authority get: %v", err)
	}
	if string(value) != "snapshot" {
		t.Fatalf("expected snapshot in authority, got %q", value)
	}
	if !synced {
		t.Fatal("expected data.synced event")
	}
}

func TestCloseFlushesAndSyncs(t *testing.T) {
	cache := newFakeCache()
	authority := hostvars.NewMemory()
	r, err := New("session-1", cache, authority, nil, staticSnapshot("snapshot"),
		WithDebounce(time.Hour))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	r.MarkDirty()
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := authority.Get(context.Background(), "session-1", hostvars.KeyWorldState); err != nil {
		t.Fatalf("expected authority state after close: %v", err)
	}
}

func TestLoadSessionPrefersCacheAndMigrates(t *testing.T) {
	cache := newFakeCache()
	authority := hostvars.NewMemory()
	ctx := context.Background()

	if err := cache.SaveWorldState(ctx, storage.WorldStateRecord{
		SessionID: "session-1",
		Snapshot:  []byte("cached"),
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	result, err := LoadSession(ctx, "session-1", cache, authority)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if !result.FromCache || string(result.WorldState) != "cached" {
		t.Fatalf("expected cache hit, got %+v", result)
	}

	migrated, err := authority.Get(ctx, "session-1", hostvars.KeyWorldState)
	if err != nil {
		t.Fatalf("expected migration to authority: %v", err)
	}
	if string(migrated) != "cached" {
		t.Fatalf("expected migrated snapshot, got %q", migrated)
	}
}

func TestLoadSessionFallsBackToAuthority(t *testing.T) {
	cache := newFakeCache()
	authority := hostvars.NewMemory()
	ctx := context.Background()

	if err := authority.Set(ctx, "session-1", hostvars.KeyWorldState, []byte("authoritative")); err != nil {
		t.Fatalf("seed authority: %v", err)
	}

	result, err := LoadSession(ctx, "session-1", cache, authority)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if result.FromCache || string(result.WorldState) != "authoritative" {
		t.Fatalf("expected authority hit, got %+v", result)
	}

	record, err := cache.LoadWorldState(ctx, "session-1")
	if err != nil {
		t.Fatalf("expected cache reseeded: %v", err)
	}
	if string(record.Snapshot) != "authoritative" {
		t.Fatalf("expected reseeded snapshot, got %q", record.Snapshot)
	}
}

func TestLoadSessionMissingEverywhere(t *testing.T) {
	cache := newFakeCache()
	if _, err := LoadSession(context.Background(), "session-1", cache, hostvars.NewMemory()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
