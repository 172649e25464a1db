package timer

import (
	"context"
	"time"
)

// Completion describes one observed expiry.
type Completion struct {
	At time.Time
	// Lazy is true when the expiry was discovered by Reconcile or Pause rather than by a tick.
	Lazy       bool
	Foreground bool
}

// CompletionHandler receives at most one Completion per run.
type CompletionHandler func(ctx context.Context, c Completion)

// CompletionGuard enforces at-most-once completion per run.
type CompletionGuard struct {
	fired bool
}

// TryFire sets the guard and reports whether this call was the first.
func (g *CompletionGuard) TryFire() bool {
	if g.fired {
		return false
	}
	g.fired = true
	return true
}

// Fired reports whether completion already fired for the current run.
func (g *CompletionGuard) Fired() bool { return g.fired }

// Clear re-arms the guard for a new run.
func (g *CompletionGuard) Clear() { g.fired = false }
