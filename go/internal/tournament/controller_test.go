package tournament

import (
	"context"
	"errors"
	"testing"

	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

type fakeTimer struct {
	starts int
	resets int
	syncs  int
}

func (f *fakeTimer) Start(context.Context) error { f.starts++; return nil }
func (f *fakeTimer) Reset(context.Context) error { f.resets++; return nil }
func (f *fakeTimer) Sync(context.Context)        { f.syncs++ }

type fakeAlarm struct {
	plays int
	stops int
	err   error
}

func (a *fakeAlarm) Play(context.Context) error { a.plays++; return a.err }
func (a *fakeAlarm) Stop(context.Context) error { a.stops++; return nil }

func newTestController(t *testing.T, options Options) (*Controller, *fakeTimer, *fakeAlarm, *blinds.Structure) {
	t.Helper()
	structure := blinds.NewStructure(kvstore.NewMemoryStore())
	tm := &fakeTimer{}
	alarm := &fakeAlarm{}
	return NewController(tm, structure, alarm, options), tm, alarm, structure
}

func TestHandleCompletion_ManualForegroundRaisesAlarm(t *testing.T) {
	ctx := context.Background()
	c, tm, alarm, structure := newTestController(t, Options{Policy: PolicyManual})

	c.HandleCompletion(ctx, timer.Completion{Foreground: true})

	if !c.AlertPending() || alarm.plays != 1 {
		t.Fatalf("expected alarm with pending alert, pending=%v plays=%d", c.AlertPending(), alarm.plays)
	}
	if structure.Index() != 0 {
		t.Fatalf("expected blinds to wait for the player, got index %d", structure.Index())
	}
	if tm.starts != 0 {
		t.Fatalf("expected no automatic start")
	}
}

func TestHandleCompletion_AlarmFailureStillShowsAlert(t *testing.T) {
	c, _, alarm, _ := newTestController(t, Options{})
	alarm.err = errors.New("no audio device")

	c.HandleCompletion(context.Background(), timer.Completion{Foreground: true})
	if !c.AlertPending() {
		t.Fatalf("expected alert pending even when sound fails")
	}
}

func TestHandleCompletion_BackgroundAdvancesSilently(t *testing.T) {
	ctx := context.Background()
	c, tm, alarm, structure := newTestController(t, Options{Policy: PolicyManual})

	c.HandleCompletion(ctx, timer.Completion{Foreground: false, Lazy: true})

	if structure.Index() != 1 {
		t.Fatalf("expected blinds to advance, got index %d", structure.Index())
	}
	if alarm.plays != 0 || c.AlertPending() {
		t.Fatalf("expected no alarm in the background")
	}
	if tm.syncs != 1 || tm.starts != 0 {
		t.Fatalf("expected one surface sync and no start, got syncs=%d starts=%d", tm.syncs, tm.starts)
	}
}

func TestHandleCompletion_AutoAdvanceAndRestart(t *testing.T) {
	ctx := context.Background()
	c, tm, alarm, structure := newTestController(t, Options{Policy: PolicyAutoAdvance, AutoRestart: true})

	c.HandleCompletion(ctx, timer.Completion{Foreground: true})

	if structure.Index() != 1 {
		t.Fatalf("expected blinds to advance, got index %d", structure.Index())
	}
	if alarm.plays != 0 {
		t.Fatalf("expected no alarm under auto advance")
	}
	if tm.starts != 1 {
		t.Fatalf("expected next round to start, got %d starts", tm.starts)
	}
}

func TestDismissAlert_AdvancesAndStaysPaused(t *testing.T) {
	ctx := context.Background()
	c, tm, alarm, structure := newTestController(t, Options{})
	c.HandleCompletion(ctx, timer.Completion{Foreground: true})

	c.DismissAlert(ctx)
	c.DismissAlert(ctx)

	if structure.Index() != 1 {
		t.Fatalf("expected a single advance, got index %d", structure.Index())
	}
	if alarm.stops != 1 || c.AlertPending() {
		t.Fatalf("expected alarm stopped once, stops=%d pending=%v", alarm.stops, c.AlertPending())
	}
	if tm.starts != 0 {
		t.Fatalf("expected timer to stay paused")
	}
}

func TestNextBlinds_AdvancesAndStarts(t *testing.T) {
	ctx := context.Background()
	c, tm, _, structure := newTestController(t, Options{})
	c.HandleCompletion(ctx, timer.Completion{Foreground: true})

	c.NextBlinds(ctx)

	if structure.Index() != 1 || tm.starts != 1 {
		t.Fatalf("expected advance and start, index=%d starts=%d", structure.Index(), tm.starts)
	}
}

func TestOnBackground_DismissesPendingAlertOnce(t *testing.T) {
	ctx := context.Background()
	c, _, alarm, structure := newTestController(t, Options{})

	c.OnBackground(ctx)
	if structure.Index() != 0 {
		t.Fatalf("expected nothing to happen without a pending alert")
	}

	c.HandleCompletion(ctx, timer.Completion{Foreground: true})
	c.OnBackground(ctx)

	if structure.Index() != 1 {
		t.Fatalf("expected exactly one advance, got index %d", structure.Index())
	}
	if alarm.stops != 1 || c.AlertPending() {
		t.Fatalf("expected alert dismissed")
	}
}

func TestReset_DropsPendingAlert(t *testing.T) {
	ctx := context.Background()
	c, tm, alarm, structure := newTestController(t, Options{})
	c.HandleCompletion(ctx, timer.Completion{Foreground: true})

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if tm.resets != 1 || alarm.stops != 1 || c.AlertPending() {
		t.Fatalf("expected reset with alert dropped, resets=%d stops=%d", tm.resets, alarm.stops)
	}
	if structure.Index() != 0 {
		t.Fatalf("expected reset not to advance the blinds")
	}
}

func TestManualBlindChangesSyncSurface(t *testing.T) {
	ctx := context.Background()
	c, tm, _, structure := newTestController(t, Options{})

	c.IncreaseBlinds(ctx)
	c.IncreaseBlinds(ctx)
	c.DecreaseBlinds(ctx)

	if structure.Index() != 1 {
		t.Fatalf("expected index 1, got %d", structure.Index())
	}
	if tm.syncs != 3 {
		t.Fatalf("expected a sync per change, got %d", tm.syncs)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyManual},
		{in: "manual", want: PolicyManual},
		{in: " AUTO_ADVANCE ", want: PolicyAutoAdvance},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParsePolicy(%q): expected %s, got %s (%v)", tt.in, tt.want, got, err)
		}
	}
}
