package core

import "github.com/dkeye/Estimate/internal/domain"

type EventType string

const (
	EventPresence        EventType = "presence"
	EventVoteStarted     EventType = "vote_started"
	EventVoteUpdate      EventType = "vote_update"
	EventRevealed        EventType = "revealed"
	EventReset           EventType = "reset"
	EventPartialRevote   EventType = "partial_revote"
	EventSettingsUpdated EventType = "room_settings_updated"
	EventSessionEnded    EventType = "session_ended"
	EventReaction        EventType = "show_reaction"
)

// Event is the envelope every broadcast is carried in.
type Event struct {
	Type    EventType     `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Payload any           `json:"payload,omitempty"`
}

type PresencePayload struct {
	Participants []domain.Participant `json:"participants"`
}

type PhasePayload struct {
	Phase domain.Phase `json:"phase"`
}

// VoteUpdatePayload never carries the value; it is hidden until reveal.
type VoteUpdatePayload struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
	HasVoted      bool                 `json:"hasVoted"`
}

type RevealedPayload struct {
	Votes      map[domain.ParticipantID]domain.VoteToken `json:"votes"`
	Aggregates Aggregates                                `json:"aggregates"`
}

type PartialRevotePayload struct {
	Phase       domain.Phase `json:"phase"`
	TargetGroup domain.Role  `json:"targetGroup"`
}

type SettingsPayload struct {
	Settings domain.Settings `json:"settings"`
}

type SessionEndedPayload struct {
	Reason string `json:"reason"`
}

type ReactionPayload struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
	ReactionID    domain.ReactionID    `json:"reactionId"`
}

const (
	EndReasonHost    = "host"
	EndReasonExpired = "expired"
)
