package tournament

import (
	"context"

	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/surface"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

// Presence projects engine snapshots and the blind cursor onto a surface.
type Presence struct {
	surface surface.Surface
	cursor  blinds.Cursor
	name    string
}

func NewPresence(s surface.Surface, cursor blinds.Cursor, name string) *Presence {
	if name == "" {
		name = surface.DefaultTournamentName
	}
	return &Presence{
		surface: s,
		cursor:  cursor,
		name:    name,
	}
}

func (p *Presence) Sync(ctx context.Context, snap timer.Snapshot, alertOnExpiry bool) {
	p.surface.StartOrUpdate(ctx, p.project(snap, alertOnExpiry))
}

func (p *Presence) End(ctx context.Context) {
	p.surface.End(ctx)
}

func (p *Presence) project(snap timer.Snapshot, alertOnExpiry bool) surface.ActivityData {
	next, _ := p.cursor.Next()
	data := surface.ActivityData{
		TournamentName:    p.name,
		CurrentBlindLevel: p.cursor.Index() + 1,
		Current:           p.cursor.Current(),
		Next:              next,
		Paused:            snap.Paused,
		AlertOnExpiry:     alertOnExpiry,
	}
	if snap.EndTimestamp != nil && !snap.Paused {
		end := *snap.EndTimestamp
		data.EndTime = &end
	} else {
		data.TimeLeftSeconds = snap.TimeLeftSeconds
	}
	return data
}
