package domain

import "strings"

type RoomID string

// NormalizeRoomID upper-cases and trims a user-typed room code.
func NormalizeRoomID(raw string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}

// Mode is fixed at room creation.
type Mode string

const (
	ModeUnified Mode = "UNIFIED"
	ModeSplit   Mode = "SPLIT"
)

// ParseMode maps client supplied mode names onto the two room modes.
// Unknown or empty input means a unified room.
func ParseMode(raw string) Mode {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SPLIT", "DEV_QA", "SPLIT_MODE":
		return ModeSplit
	default:
		return ModeUnified
	}
}

type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseVoting       Phase = "VOTING"
	PhaseVotingGroupA Phase = "VOTING_GROUP_A"
	PhaseVotingGroupB Phase = "VOTING_GROUP_B"
	PhaseRevealed     Phase = "REVEALED"
)

// IsVoting reports whether votes may be cast in p.
func (p Phase) IsVoting() bool {
	return p == PhaseVoting || p == PhaseVotingGroupA || p == PhaseVotingGroupB
}

// Eligible implements the per-phase voting rule.
func (p Phase) Eligible(role Role) bool {
	switch p {
	case PhaseVoting:
		return role != RoleObserver
	case PhaseVotingGroupA:
		return role == RoleGroupA
	case PhaseVotingGroupB:
		return role == RoleGroupB
	default:
		return false
	}
}

type Settings struct {
	FunFeatures bool `json:"funFeatures"`
	AutoReveal  bool `json:"autoReveal"`
}

func DefaultSettings() Settings {
	return Settings{}
}

// SettingsPatch carries only the fields a host wants to change.
type SettingsPatch struct {
	FunFeatures *bool `json:"funFeatures,omitempty"`
	AutoReveal  *bool `json:"autoReveal,omitempty"`
}

func (p SettingsPatch) Empty() bool {
	return p.FunFeatures == nil && p.AutoReveal == nil
}

// Apply returns s with every non-nil field of p merged in.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.FunFeatures != nil {
		s.FunFeatures = *p.FunFeatures
	}
	if p.AutoReveal != nil {
		s.AutoReveal = *p.AutoReveal
	}
	return s
}
