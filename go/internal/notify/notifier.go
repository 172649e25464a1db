package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/toondeboer/pokerkit/go/internal/models"
)

// Category groups timer alerts so the host can attach dismiss actions.
const Category = "timerActions"

// Alert is the payload of one local notification.
type Alert struct {
	Title    string
	Body     string
	Category string
	Next     models.BlindLevel
	// Repeat is 0 for the primary alert and counts up through a burst.
	Repeat int
}

// NewBlindsAlert builds the alert announcing the next blind level.
func NewBlindsAlert(next models.BlindLevel, repeat int) Alert {
	return Alert{
		Title:    "Time is up!",
		Body:     fmt.Sprintf("New blind levels: %d / %d", next.Small, next.Big),
		Category: Category,
		Next:     next,
		Repeat:   repeat,
	}
}

// Notifier is the host's local notification capability.
type Notifier interface {
	ScheduleAlert(ctx context.Context, delay time.Duration, alert Alert) (string, error)
	CancelAlert(ctx context.Context, id string) error
	// CancelAllAlerts clears pending and already delivered alerts.
	CancelAllAlerts(ctx context.Context) error
}
