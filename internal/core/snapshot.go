package core

import "github.com/dkeye/Estimate/internal/domain"

// State is what a (re)joining participant needs to render the room.
// Vote values are only included once revealed; before that only the ids of
// participants who have voted are listed.
type State struct {
	RoomID        domain.RoomID                             `json:"roomId"`
	ParticipantID domain.ParticipantID                      `json:"participantId"`
	Mode          domain.Mode                               `json:"mode"`
	Phase         domain.Phase                              `json:"phase"`
	HostID        domain.ParticipantID                      `json:"hostId"`
	Participants  []domain.Participant                      `json:"participants"`
	Votes         map[domain.ParticipantID]domain.VoteToken `json:"votes,omitempty"`
	Voted         []domain.ParticipantID                    `json:"voted"`
	Aggregates    *Aggregates                               `json:"aggregates,omitempty"`
	Settings      domain.Settings                           `json:"settings"`
	Reconnected   bool                                      `json:"reconnected"`
}

// Snapshot builds the state as seen by viewer.
func (r *Room) Snapshot(viewer domain.ParticipantID) State {
	st := State{
		RoomID:        r.id,
		ParticipantID: viewer,
		Mode:          r.mode,
		Phase:         r.phase,
		HostID:        r.hostID,
		Participants:  r.Participants(),
		Voted:         make([]domain.ParticipantID, 0, len(r.votes)),
		Settings:      r.settings,
	}
	for _, id := range r.order {
		if _, ok := r.votes[id]; ok {
			st.Voted = append(st.Voted, id)
		}
	}
	if r.phase == domain.PhaseRevealed {
		st.Votes = r.Votes()
	}
	if agg, ok := r.Aggregates(); ok {
		st.Aggregates = &agg
	}
	return st
}
