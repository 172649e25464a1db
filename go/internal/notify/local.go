package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sink receives alerts when they fire.
type Sink interface {
	Deliver(ctx context.Context, id string, alert Alert)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, id string, alert Alert)

func (f SinkFunc) Deliver(ctx context.Context, id string, alert Alert) { f(ctx, id, alert) }

type pendingAlert struct {
	timer clockwork.Timer
	stop  chan struct{}
}

// LocalNotifier is an in-process Notifier backed by one-shot clock timers.
type LocalNotifier struct {
	clock clockwork.Clock
	sink  Sink

	mu        sync.Mutex
	pending   map[string]pendingAlert
	delivered []string
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewLocalNotifier(clock clockwork.Clock, sink Sink) *LocalNotifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalNotifier{
		clock:   clock,
		sink:    sink,
		pending: make(map[string]pendingAlert),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (n *LocalNotifier) ScheduleAlert(_ context.Context, delay time.Duration, alert Alert) (string, error) {
	if delay < 0 {
		delay = 0
	}
	id := uuid.New().String()
	timer := n.clock.NewTimer(delay)
	stop := make(chan struct{})

	n.mu.Lock()
	n.pending[id] = pendingAlert{timer: timer, stop: stop}
	n.mu.Unlock()

	go func() {
		select {
		case <-timer.Chan():
			n.mu.Lock()
			if _, ok := n.pending[id]; !ok {
				// cancelled while firing
				n.mu.Unlock()
				return
			}
			delete(n.pending, id)
			n.delivered = append(n.delivered, id)
			n.mu.Unlock()

			log.Debug().Str("alert_id", id).Int("repeat", alert.Repeat).Msg("alert fired")
			if n.sink != nil {
				n.sink.Deliver(n.ctx, id, alert)
			}
		case <-stop:
		case <-n.ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()

	log.Debug().Str("alert_id", id).Dur("delay", delay).Msg("alert scheduled")
	return id, nil
}

func (n *LocalNotifier) CancelAlert(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelLocked(id)
	return nil
}

func (n *LocalNotifier) CancelAllAlerts(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id := range n.pending {
		n.cancelLocked(id)
	}
	n.delivered = nil
	return nil
}

// Pending returns how many alerts are waiting to fire.
func (n *LocalNotifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Delivered returns the ids of fired alerts not yet cleared.
func (n *LocalNotifier) Delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.delivered...)
}

// Close cancels every pending alert.
func (n *LocalNotifier) Close() {
	n.cancel()
	n.mu.Lock()
	defer n.mu.Unlock()
	for id := range n.pending {
		n.cancelLocked(id)
	}
}

func (n *LocalNotifier) cancelLocked(id string) {
	p, ok := n.pending[id]
	if !ok {
		return
	}
	stopAndDrainTimer(p.timer)
	close(p.stop)
	delete(n.pending, id)
	log.Debug().Str("alert_id", id).Msg("alert cancelled")
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
