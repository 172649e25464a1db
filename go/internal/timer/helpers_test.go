package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
)

var testEpoch = time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

type presenceSync struct {
	snap          Snapshot
	alertOnExpiry bool
}

type fakePresence struct {
	mu    sync.Mutex
	syncs []presenceSync
	ends  int
}

func (p *fakePresence) Sync(_ context.Context, snap Snapshot, alertOnExpiry bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncs = append(p.syncs, presenceSync{snap: snap, alertOnExpiry: alertOnExpiry})
}

func (p *fakePresence) End(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ends++
}

func (p *fakePresence) last(t *testing.T) presenceSync {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.syncs) == 0 {
		t.Fatalf("expected at least one presence sync")
	}
	return p.syncs[len(p.syncs)-1]
}

type fakeAlerts struct {
	mu        sync.Mutex
	scheduled []time.Duration
	cancels   int
}

func (a *fakeAlerts) Schedule(_ context.Context, in time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduled = append(a.scheduled, in)
}

func (a *fakeAlerts) Cancel(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancels++
}

func (a *fakeAlerts) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.scheduled), a.cancels
}

type completionRecorder struct {
	mu    sync.Mutex
	calls []Completion
	ch    chan Completion
}

func newCompletionRecorder() *completionRecorder {
	return &completionRecorder{ch: make(chan Completion, 8)}
}

func (r *completionRecorder) handle(_ context.Context, c Completion) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	r.ch <- c
}

func (r *completionRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type harness struct {
	engine     *Engine
	clock      *clockwork.FakeClock
	store      *kvstore.MemoryStore
	repo       *Repository
	presence   *fakePresence
	alerts     *fakeAlerts
	completion *completionRecorder
}

// newHarness builds an engine whose ticker never fires on its own unless
// tickInterval is short enough for the test to advance past it.
func newHarness(t *testing.T, store *kvstore.MemoryStore, clock *clockwork.FakeClock, tickInterval time.Duration) *harness {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	if clock == nil {
		clock = clockwork.NewFakeClockAt(testEpoch)
	}
	if tickInterval <= 0 {
		tickInterval = time.Hour
	}

	repo := NewRepository(store)
	engine := New(repo, Config{TickInterval: tickInterval, Clock: clock})
	h := &harness{
		engine:     engine,
		clock:      clock,
		store:      store,
		repo:       repo,
		presence:   &fakePresence{},
		alerts:     &fakeAlerts{},
		completion: newCompletionRecorder(),
	}
	engine.SetPresence(h.presence)
	engine.SetAlertScheduler(h.alerts)
	engine.SetCompletionHandler(h.completion.handle)
	t.Cleanup(engine.Close)
	return h
}
