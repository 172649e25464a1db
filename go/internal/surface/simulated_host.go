package surface

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Op names a Host method for failure injection.
type Op string

const (
	OpStart   Op = "start"
	OpUpdate  Op = "update"
	OpEnd     Op = "end"
	OpEnabled Op = "enabled"
	OpList    Op = "list"
)

// SimulatedHost is an in-process Host. It stands in for the mobile platform
// in the console client and in tests.
type SimulatedHost struct {
	mu       sync.Mutex
	enabled  bool
	fixedID  string
	live     []string
	data     map[string]ActivityData
	failures map[Op]error
	calls    map[Op]int
}

// SimulatedHostOption configures a SimulatedHost.
type SimulatedHostOption func(*SimulatedHost)

// WithFixedID makes the host behave like a single-instance service: every
// start returns id, and starting while live replaces the data.
func WithFixedID(id string) SimulatedHostOption {
	return func(h *SimulatedHost) {
		h.fixedID = id
	}
}

// WithLiveActivities seeds activities that outlived a previous process.
func WithLiveActivities(ids ...string) SimulatedHostOption {
	return func(h *SimulatedHost) {
		for _, id := range ids {
			h.live = append(h.live, id)
			h.data[id] = ActivityData{}
		}
	}
}

func NewSimulatedHost(opts ...SimulatedHostOption) *SimulatedHost {
	h := &SimulatedHost{
		enabled:  true,
		data:     make(map[string]ActivityData),
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SimulatedHost) StartActivity(_ context.Context, data ActivityData) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[OpStart]++
	if err := h.failures[OpStart]; err != nil {
		return "", err
	}

	id := h.fixedID
	if id == "" {
		id = uuid.New().String()
	}
	if !contains(h.live, id) {
		h.live = append(h.live, id)
	}
	h.data[id] = data
	log.Debug().Str("activity_id", id).Bool("paused", data.Paused).Msg("simulated surface started")
	return id, nil
}

func (h *SimulatedHost) UpdateActivity(_ context.Context, id string, data ActivityData) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[OpUpdate]++
	if err := h.failures[OpUpdate]; err != nil {
		return err
	}
	if !contains(h.live, id) {
		return ErrUnknownActivity
	}
	h.data[id] = data
	log.Debug().Str("activity_id", id).Bool("paused", data.Paused).Int("time_left_seconds", data.TimeLeftSeconds).Msg("simulated surface updated")
	return nil
}

func (h *SimulatedHost) EndActivity(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[OpEnd]++
	if err := h.failures[OpEnd]; err != nil {
		return err
	}
	if !h.removeLocked(id) {
		return ErrUnknownActivity
	}
	log.Debug().Str("activity_id", id).Msg("simulated surface ended")
	return nil
}

func (h *SimulatedHost) AreActivitiesEnabled(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[OpEnabled]++
	if err := h.failures[OpEnabled]; err != nil {
		return false, err
	}
	return h.enabled, nil
}

func (h *SimulatedHost) GetActiveActivities(context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[OpList]++
	if err := h.failures[OpList]; err != nil {
		return nil, err
	}
	return append([]string(nil), h.live...), nil
}

// SetEnabled toggles the user-level permission for surfaces.
func (h *SimulatedHost) SetEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = enabled
}

// FailWith makes op return err until cleared with nil.
func (h *SimulatedHost) FailWith(op Op, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, op)
		return
	}
	h.failures[op] = err
}

// Dismiss removes a surface the way a user swipe or the OS would.
func (h *SimulatedHost) Dismiss(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

// Live returns the ids currently shown.
func (h *SimulatedHost) Live() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.live...)
}

// Data returns the last data pushed to id.
func (h *SimulatedHost) Data(id string) (ActivityData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	data, ok := h.data[id]
	if !ok || !contains(h.live, id) {
		return ActivityData{}, false
	}
	return data, true
}

// Calls returns how often op was invoked.
func (h *SimulatedHost) Calls(op Op) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[op]
}

func (h *SimulatedHost) removeLocked(id string) bool {
	for i, candidate := range h.live {
		if candidate == id {
			h.live = append(h.live[:i], h.live[i+1:]...)
			delete(h.data, id)
			return true
		}
	}
	return false
}
