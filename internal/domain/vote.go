package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	MaxVoteLen = 16
	// MaxVoteMagnitude bounds numeric votes so aggregates stay finite.
	MaxVoteMagnitude = 1e6
)

// Sentinel tokens count as "voted" but never enter an average.
var sentinelTokens = map[string]struct{}{
	"?":       {},
	"unknown": {},
	"break":   {},
	"coffee":  {},
}

type VoteToken string

// ParseVote accepts a finite number or one of the sentinel tokens.
func ParseVote(raw string) (VoteToken, error) {
	v := strings.TrimSpace(raw)
	if v == "" || len(v) > MaxVoteLen {
		return "", ErrInvalidVote
	}
	if _, ok := parseNumber(v); ok {
		return VoteToken(v), nil
	}
	lower := strings.ToLower(v)
	if _, ok := sentinelTokens[lower]; ok {
		return VoteToken(lower), nil
	}
	return "", ErrInvalidVote
}

// Numeric returns the value of a numeric token.
func (t VoteToken) Numeric() (float64, bool) {
	return parseNumber(string(t))
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxVoteMagnitude {
		return 0, false
	}
	return f, true
}
