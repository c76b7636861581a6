package domain

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrIneligibleVoter     = errors.New("ineligible voter")
	ErrInvalidMode         = errors.New("invalid mode")
	ErrInvalidPhase        = errors.New("invalid phase")
	ErrInvalidVote         = errors.New("invalid vote")
	ErrInvalidReaction     = errors.New("invalid reaction")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNotInRoom           = errors.New("not in room")
	ErrCodeSpaceExhausted  = errors.New("room code space exhausted")
	ErrRateLimited         = errors.New("rate limited")

	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)
