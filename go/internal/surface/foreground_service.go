package surface

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// ForegroundServiceID is the single id an Android foreground service runs under.
const ForegroundServiceID = "foreground_service"

// ForegroundServiceSurface drives the Android foreground service notification.
type ForegroundServiceSurface struct {
	mu      sync.Mutex
	host    Host
	running bool
}

func NewForegroundServiceSurface(host Host) *ForegroundServiceSurface {
	return &ForegroundServiceSurface{host: host}
}

func (s *ForegroundServiceSurface) Supported() bool {
	return true
}

func (s *ForegroundServiceSurface) ActivityID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ""
	}
	return ForegroundServiceID
}

func (s *ForegroundServiceSurface) StartOrUpdate(ctx context.Context, data ActivityData) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled, err := s.host.AreActivitiesEnabled(ctx)
	if err != nil || !enabled {
		log.Warn().Err(err).Msg("foreground service unavailable or notification permission denied")
		return "", false
	}

	live, err := s.host.GetActiveActivities(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to check foreground service state")
		return "", false
	}

	if contains(live, ForegroundServiceID) {
		if err := s.host.UpdateActivity(ctx, ForegroundServiceID, data); err != nil {
			log.Error().Err(err).Msg("failed to update foreground service")
			s.running = false
			return "", false
		}
		s.running = true
		log.Debug().Msg("foreground service updated")
		return ForegroundServiceID, true
	}

	if _, err := s.host.StartActivity(ctx, data); err != nil {
		log.Error().Err(err).Msg("failed to start foreground service")
		s.running = false
		return "", false
	}
	s.running = true
	log.Info().Msg("foreground service started")
	return ForegroundServiceID, true
}

// End stops the service even when no handle is held, since the service may
// have outlived a previous process.
func (s *ForegroundServiceSurface) End(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if err := s.host.EndActivity(ctx, ForegroundServiceID); err != nil {
		log.Debug().Err(err).Msg("failed to stop foreground service")
		return
	}
	log.Info().Msg("foreground service stopped")
}

func (s *ForegroundServiceSurface) SyncActivityState(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := s.host.GetActiveActivities(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to sync foreground service state")
		return
	}
	s.running = contains(live, ForegroundServiceID)
	log.Debug().Bool("running", s.running).Msg("foreground service state synced")
}
