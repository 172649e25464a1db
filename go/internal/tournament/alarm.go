package tournament

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// LogAlarm stands in for sound playback by logging.
type LogAlarm struct {
	mu      sync.Mutex
	playing bool
}

func (a *LogAlarm) Play(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = true
	log.Warn().Msg("ALARM: time is up")
	return nil
}

func (a *LogAlarm) Stop(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		a.playing = false
		log.Info().Msg("alarm stopped")
	}
	return nil
}

func (a *LogAlarm) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}
