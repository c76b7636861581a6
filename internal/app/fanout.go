package app

import (
	"encoding/json"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// Fanout is the registry backed core.Broadcaster. It encodes the event once
// and enqueues it on every attached connection without blocking.
type Fanout struct {
	Registry *Registry
}

func NewFanout(reg *Registry) *Fanout {
	return &Fanout{Registry: reg}
}

func (f *Fanout) Publish(room domain.RoomID, ev core.Event) core.PublishResult {
	res := core.PublishResult{}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("room", string(room)).Str("event", string(ev.Type)).Msg("marshal event")
		return res
	}
	for _, snap := range f.Registry.MembersOfRoom(room) {
		if err := snap.Session.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, snap.SID)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.fanout").Str("room", string(room)).Str("event", string(ev.Type)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
