package signal

import (
	"errors"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	errBadPayload     = errors.New("bad payload")
	errUnknownCommand = errors.New("unknown command")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrRoomNotFound, "room_not_found"},
	{domain.ErrNotAuthorized, "not_authorized"},
	{domain.ErrIneligibleVoter, "ineligible_voter"},
	{domain.ErrInvalidMode, "invalid_mode"},
	{domain.ErrInvalidPhase, "invalid_phase"},
	{domain.ErrInvalidVote, "invalid_vote"},
	{domain.ErrInvalidReaction, "invalid_reaction"},
	{domain.ErrParticipantNotFound, "not_in_room"},
	{domain.ErrNotInRoom, "not_in_room"},
	{domain.ErrRateLimited, "rate_limited"},
	{domain.ErrNameEmpty, "invalid_name"},
	{domain.ErrNameTooLong, "invalid_name"},
	{errBadPayload, "bad_payload"},
	{errUnknownCommand, "unknown_command"},
}

// ErrorCode maps an error to its wire code; anything unknown is internal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}

type errorResp struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, command string, err error) {
	code := ErrorCode(err)
	if code == "internal" {
		log.Error().Err(err).Str("module", "signal").Str("command", command).Msg("command failed")
	} else {
		log.Debug().Err(err).Str("module", "signal").Str("command", command).Msg("command rejected")
	}
	ctl.sendJSON(c, errorResp{Type: "error", Command: command, Error: code})
}
