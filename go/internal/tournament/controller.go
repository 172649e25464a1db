package tournament

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

// Timer is the part of the engine the controller drives.
type Timer interface {
	Start(ctx context.Context) error
	Reset(ctx context.Context) error
	Sync(ctx context.Context)
}

// Blinds is the cursor plus manual stepping back.
type Blinds interface {
	blinds.Cursor
	Decrease(ctx context.Context) error
}

// Alarm plays the audible expiry alarm.
type Alarm interface {
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Options struct {
	Policy Policy
	// AutoRestart starts the next round right after the blinds advance.
	AutoRestart bool
}

// Controller reacts to completed rounds and owns the on-screen expiry alert.
type Controller struct {
	mu           sync.Mutex
	timer        Timer
	cursor       Blinds
	alarm        Alarm
	options      Options
	alertPending bool
}

func NewController(t Timer, cursor Blinds, alarm Alarm, options Options) *Controller {
	if options.Policy == "" {
		options.Policy = PolicyManual
	}
	return &Controller{
		timer:   t,
		cursor:  cursor,
		alarm:   alarm,
		options: options,
	}
}

// HandleCompletion is registered as the engine's completion handler.
func (c *Controller) HandleCompletion(ctx context.Context, completion timer.Completion) {
	log.Info().
		Bool("foreground", completion.Foreground).
		Bool("lazy", completion.Lazy).
		Str("policy", string(c.options.Policy)).
		Msg("round completed")

	if c.options.Policy == PolicyManual && completion.Foreground {
		c.mu.Lock()
		c.alertPending = true
		c.mu.Unlock()

		if err := c.alarm.Play(ctx); err != nil {
			log.Error().Err(err).Msg("failed to play alarm")
		}
		return
	}

	c.advance(ctx)
	if c.options.AutoRestart {
		c.start(ctx)
	}
}

// AlertPending reports whether the expiry alert is waiting for the player.
func (c *Controller) AlertPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alertPending
}

// DismissAlert advances the blinds and leaves the timer paused.
func (c *Controller) DismissAlert(ctx context.Context) {
	if !c.clearAlert(ctx) {
		return
	}
	c.advance(ctx)
}

// NextBlinds advances the blinds and starts the next round.
func (c *Controller) NextBlinds(ctx context.Context) {
	if !c.clearAlert(ctx) {
		return
	}
	c.advance(ctx)
	c.start(ctx)
}

// OnBackground dismisses a pending alert, advancing the blinds once.
func (c *Controller) OnBackground(ctx context.Context) {
	if c.AlertPending() {
		log.Info().Msg("app backgrounded with alert showing - dismissing")
		c.DismissAlert(ctx)
	}
}

// Reset resets the timer and drops any pending alert.
func (c *Controller) Reset(ctx context.Context) error {
	c.clearAlert(ctx)
	return c.timer.Reset(ctx)
}

// IncreaseBlinds moves to the next level by hand.
func (c *Controller) IncreaseBlinds(ctx context.Context) {
	c.advance(ctx)
}

// DecreaseBlinds moves back one level by hand.
func (c *Controller) DecreaseBlinds(ctx context.Context) {
	if err := c.cursor.Decrease(ctx); err != nil {
		log.Error().Err(err).Msg("failed to persist blind level")
	}
	c.timer.Sync(ctx)
}

func (c *Controller) clearAlert(ctx context.Context) bool {
	c.mu.Lock()
	pending := c.alertPending
	c.alertPending = false
	c.mu.Unlock()

	if !pending {
		return false
	}
	if err := c.alarm.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop alarm")
	}
	return true
}

func (c *Controller) advance(ctx context.Context) {
	if err := c.cursor.Advance(ctx); err != nil {
		// the in-memory cursor already moved
		log.Error().Err(err).Msg("failed to persist blind level")
	}
	c.timer.Sync(ctx)
}

func (c *Controller) start(ctx context.Context) {
	if err := c.timer.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start next round")
	}
}
