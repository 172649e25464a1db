package surface

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// LiveActivitySurface drives an iOS lock-screen live activity.
type LiveActivitySurface struct {
	mu         sync.Mutex
	host       Host
	supported  bool
	activityID string
}

// NewLiveActivitySurface creates the surface. Device support is decided by
// the caller once and never re-queried.
func NewLiveActivitySurface(host Host, supported bool) *LiveActivitySurface {
	return &LiveActivitySurface{
		host:      host,
		supported: supported,
	}
}

func (s *LiveActivitySurface) Supported() bool {
	return s.supported
}

func (s *LiveActivitySurface) ActivityID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activityID
}

func (s *LiveActivitySurface) StartOrUpdate(ctx context.Context, data ActivityData) (string, bool) {
	if !s.supported {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	enabled, err := s.host.AreActivitiesEnabled(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to check live activity status")
		return "", false
	}
	if !enabled {
		log.Warn().Msg("live activities are disabled")
		return "", false
	}

	if s.activityID != "" {
		live, err := s.host.GetActiveActivities(ctx)
		if err != nil {
			// Keep the handle; the next transition retries against it.
			log.Warn().Err(err).Str("activity_id", s.activityID).Msg("failed to list live activities")
			return "", false
		}

		if contains(live, s.activityID) {
			err := s.host.UpdateActivity(ctx, s.activityID, data)
			if err == nil {
				log.Debug().Str("activity_id", s.activityID).Msg("live activity updated")
				return s.activityID, true
			}
			log.Warn().Err(err).Str("activity_id", s.activityID).Msg("failed to update live activity - starting a new one")
		} else {
			log.Info().Str("activity_id", s.activityID).Msg("live activity no longer active - clearing handle")
		}
		s.activityID = ""
	}

	id, err := s.host.StartActivity(ctx, data)
	if err != nil || id == "" {
		log.Warn().Err(err).Msg("failed to start live activity")
		return "", false
	}
	s.activityID = id
	log.Info().Str("activity_id", id).Msg("live activity started")
	return id, true
}

func (s *LiveActivitySurface) End(ctx context.Context) {
	if !s.supported {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activityID == "" {
		return
	}
	id := s.activityID
	s.activityID = ""
	if err := s.host.EndActivity(ctx, id); err != nil {
		log.Warn().Err(err).Str("activity_id", id).Msg("failed to end live activity")
		return
	}
	log.Info().Str("activity_id", id).Msg("live activity ended")
}

// SyncActivityState drops a handle the host no longer lists, or adopts the
// first live activity and ends any others when no handle is held.
func (s *LiveActivitySurface) SyncActivityState(ctx context.Context) {
	if !s.supported {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := s.host.GetActiveActivities(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to sync live activity state")
		return
	}

	switch {
	case s.activityID != "" && !contains(live, s.activityID):
		log.Info().Str("activity_id", s.activityID).Msg("stored live activity is gone - clearing handle")
		s.activityID = ""
	case s.activityID == "" && len(live) > 0:
		for _, extra := range live[1:] {
			if err := s.host.EndActivity(ctx, extra); err != nil {
				log.Warn().Err(err).Str("activity_id", extra).Msg("failed to end orphaned live activity")
				continue
			}
			log.Info().Str("activity_id", extra).Msg("ended orphaned live activity")
		}
		s.activityID = live[0]
		log.Info().Str("activity_id", s.activityID).Msg("adopted live activity")
	}
}
