package surface

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/toondeboer/pokerkit/go/internal/models"
)

// ErrUnknownActivity is returned by a Host addressed with an id it no longer tracks.
var ErrUnknownActivity = errors.New("activity not found")

// DefaultTournamentName labels surfaces when no name is configured.
const DefaultTournamentName = "Poker Tournament"

// ActivityData is the projection pushed to a background surface.
type ActivityData struct {
	TournamentName string
	// CurrentBlindLevel is 1-based.
	CurrentBlindLevel int
	Current           models.BlindLevel
	Next              models.BlindLevel
	// EndTime is set while running; TimeLeftSeconds while paused.
	EndTime         *time.Time
	TimeLeftSeconds int
	Paused          bool
	AlertOnExpiry   bool
}

// Host is the platform layer that owns the actual surfaces.
type Host interface {
	StartActivity(ctx context.Context, data ActivityData) (string, error)
	UpdateActivity(ctx context.Context, id string, data ActivityData) error
	EndActivity(ctx context.Context, id string) error
	AreActivitiesEnabled(ctx context.Context) (bool, error)
	GetActiveActivities(ctx context.Context) ([]string, error)
}

const (
	OSIOS     = "ios"
	OSAndroid = "android"
	OSNone    = "none"
)

// Platform identifies the host operating system.
type Platform struct {
	OS      string
	Version string
}

// SupportsLiveActivities reports whether the OS version is at least iOS 16.1.
func (p Platform) SupportsLiveActivities() bool {
	if p.OS != OSIOS {
		return false
	}
	major, minor := parseVersion(p.Version)
	return major > 16 || (major == 16 && minor >= 1)
}

func parseVersion(version string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0
	}
	minor := 0
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			minor = m
		}
	}
	return major, minor
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
