package surface

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Surface keeps at most one externally visible countdown in agreement with
// the engine. The host, not this process, decides whether a surface still
// exists, so every method tolerates a handle that went stale.
type Surface interface {
	// StartOrUpdate creates the surface or updates the current one. It
	// returns the live id and whether the host accepted the data.
	StartOrUpdate(ctx context.Context, data ActivityData) (string, bool)
	// End terminates the surface. The local handle is always cleared.
	End(ctx context.Context)
	// SyncActivityState reconciles the local handle with the host's live list.
	SyncActivityState(ctx context.Context)
	ActivityID() string
	Supported() bool
}

// Select picks the surface variant for the platform once at startup.
func Select(platform Platform, host Host) Surface {
	if host == nil {
		return NullSurface{}
	}

	switch platform.OS {
	case OSIOS:
		supported := platform.SupportsLiveActivities()
		if !supported {
			log.Info().Str("os_version", platform.Version).Msg("live activities need iOS 16.1 or newer")
		}
		return NewLiveActivitySurface(host, supported)
	case OSAndroid:
		return NewForegroundServiceSurface(host)
	default:
		log.Info().Str("os", platform.OS).Msg("no background surface for platform")
		return NullSurface{}
	}
}

// NullSurface is used on platforms without background surfaces.
type NullSurface struct{}

func (NullSurface) StartOrUpdate(context.Context, ActivityData) (string, bool) { return "", false }
func (NullSurface) End(context.Context)                                        {}
func (NullSurface) SyncActivityState(context.Context)                          {}
func (NullSurface) ActivityID() string                                         { return "" }
func (NullSurface) Supported() bool                                            { return false }
