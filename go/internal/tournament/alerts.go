package tournament

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/models"
	"github.com/toondeboer/pokerkit/go/internal/notify"
)

// Alerts schedules expiry notifications announcing the upcoming blinds.
type Alerts struct {
	scheduler *notify.Scheduler
	cursor    blinds.Cursor
}

func NewAlerts(scheduler *notify.Scheduler, cursor blinds.Cursor) *Alerts {
	return &Alerts{
		scheduler: scheduler,
		cursor:    cursor,
	}
}

func (a *Alerts) Schedule(ctx context.Context, in time.Duration) {
	if err := a.scheduler.Schedule(ctx, in, a.upcoming()); err != nil {
		log.Debug().Err(err).Msg("expiry alerts partially scheduled")
	}
}

func (a *Alerts) Cancel(ctx context.Context) {
	if err := a.scheduler.Cancel(ctx); err != nil {
		log.Debug().Err(err).Msg("expiry alerts partially cancelled")
	}
}

// upcoming is the level that applies after expiry. On the last level the
// blinds stay where they are.
func (a *Alerts) upcoming() models.BlindLevel {
	if next, ok := a.cursor.Next(); ok {
		return next
	}
	return a.cursor.Current()
}
