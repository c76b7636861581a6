package orch

import (
	"context"
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// SweepIdle deletes rooms nobody is connected to whose last activity is older
// than ttl. Remaining sessions get a session_ended notice first.
func (o *Orchestrator) SweepIdle(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	removed := 0
	for _, id := range o.Rooms.IdleCandidates(cutoff) {
		dropped := false
		_ = o.Rooms.Update(id, func(room *core.Room) (bool, error) {
			if room.ConnectedCount() > 0 || !room.LastActivity().Before(cutoff) {
				return false, nil
			}
			dropped = true
			o.publish(id, room.Ended(core.EndReasonExpired))
			o.Registry.ForgetRoom(id)
			log.Info().Str("module", "orch.sweeper").Str("room", string(id)).
				Str("idle_since", humanize.Time(room.LastActivity())).Msg("evicting idle room")
			return true, nil
		})
		if dropped {
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on every tick until ctx is done.
func (o *Orchestrator) RunSweeper(ctx context.Context, interval, ttl time.Duration) error {
	if interval <= 0 || ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("module", "orch.sweeper").Str("interval", interval.String()).Str("ttl", ttl.String()).Msg("idle sweeper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := o.SweepIdle(now, ttl); n > 0 {
				log.Info().Str("module", "orch.sweeper").Int("removed", n).Str("rooms_left", humanize.Comma(int64(o.Rooms.Count()))).Msg("sweep done")
			}
		}
	}
}
