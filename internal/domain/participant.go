// Package domain contains entities without transport or locking, just data
// and the small validation rules that belong to it.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 36
	MaxDisplayNameLen   = 36
)

type ParticipantID string

// NewParticipantID issues a process-unique identity that outlives any
// transport connection.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

// Role is the canonical group a participant belongs to. In a unified room
// RoleGroupA stands in for "voter".
type Role string

const (
	RoleGroupA   Role = "GROUP_A"
	RoleGroupB   Role = "GROUP_B"
	RoleObserver Role = "OBSERVER"
)

// ParseRole translates a client role string once, at room entry.
func ParseRole(raw string, mode Mode) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OBSERVER":
		return RoleObserver
	case "QA", "GROUP_B":
		if mode == ModeSplit {
			return RoleGroupB
		}
		return RoleGroupA
	default:
		return RoleGroupA
	}
}

// ParseGroup accepts only the two voting groups; used for partial re-votes.
func ParseGroup(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GROUP_A", "DEV":
		return RoleGroupA, true
	case "GROUP_B", "QA":
		return RoleGroupB, true
	default:
		return "", false
	}
}

type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"name"`
	Role        Role          `json:"role"`
	IsHost      bool          `json:"isHost"`
	Connected   bool          `json:"connected"`
	AvatarSeed  string        `json:"avatarSeed"`
	JoinedAt    time.Time     `json:"joinedAt"`
}

// NewParticipant avoids raw literals in callers and keeps construction obvious.
func NewParticipant(name string, role Role, isHost bool) (*Participant, error) {
	clean, err := NormalizeDisplayName(name)
	if err != nil {
		return nil, err
	}
	return &Participant{
		ID:          NewParticipantID(),
		DisplayName: clean,
		Role:        role,
		IsHost:      isHost,
		AvatarSeed:  NewAvatarSeed(),
		JoinedAt:    time.Now().UTC(),
	}, nil
}

func (p *Participant) SetDisplayName(name string) error {
	clean, err := NormalizeDisplayName(name)
	if err != nil {
		return err
	}
	p.DisplayName = clean
	return nil
}

func (p *Participant) RegenerateAvatar() {
	p.AvatarSeed = NewAvatarSeed()
}

// NormalizeDisplayName trims and collapses whitespace and enforces length.
func NormalizeDisplayName(name string) (string, error) {
	clean := strings.Join(strings.Fields(name), " ")
	if clean == "" {
		return "", ErrNameEmpty
	}
	if utf8.RuneCountInString(clean) > MaxDisplayNameLen {
		return "", ErrNameTooLong
	}
	return clean, nil
}

func NewAvatarSeed() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(buf)
}
