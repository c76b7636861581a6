package signal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkeye/Estimate/internal/domain"
)

func TestErrorCode(t *testing.T) {
	tests := map[error]string{
		domain.ErrRoomNotFound:                            "room_not_found",
		domain.ErrNotAuthorized:                           "not_authorized",
		domain.ErrIneligibleVoter:                         "ineligible_voter",
		domain.ErrInvalidMode:                             "invalid_mode",
		domain.ErrInvalidPhase:                            "invalid_phase",
		domain.ErrInvalidVote:                             "invalid_vote",
		domain.ErrInvalidReaction:                         "invalid_reaction",
		domain.ErrNotInRoom:                               "not_in_room",
		domain.ErrRateLimited:                             "rate_limited",
		domain.ErrNameTooLong:                             "invalid_name",
		fmt.Errorf("join: %w", domain.ErrNameEmpty):       "invalid_name",
		fmt.Errorf("cast: %w", domain.ErrIneligibleVoter): "ineligible_voter",
		errors.New("disk on fire"):                        "internal",
		errUnknownCommand:                                 "unknown_command",
		errBadPayload:                                     "bad_payload",
	}
	for err, want := range tests {
		if got := ErrorCode(err); got != want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", err, got, want)
		}
	}
}
