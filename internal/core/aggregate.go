package core

import (
	"math"
	"sort"

	"github.com/dkeye/Estimate/internal/domain"
)

// Aggregate is the result for one voting group. Mean is 0 when Numeric is 0.
type Aggregate struct {
	Mean      float64 `json:"mean"`
	Votes     int     `json:"votes"`
	Numeric   int     `json:"numeric"`
	Consensus bool    `json:"consensus"`
}

// Aggregates holds All for unified rooms, GroupA and GroupB for split rooms.
type Aggregates struct {
	All    *Aggregate `json:"all,omitempty"`
	GroupA *Aggregate `json:"groupA,omitempty"`
	GroupB *Aggregate `json:"groupB,omitempty"`
}

// Compute is pure: the same votes and roles always give the same result.
// Votes of unknown participants and observers are ignored.
func Compute(mode domain.Mode, votes map[domain.ParticipantID]domain.VoteToken, roles map[domain.ParticipantID]domain.Role) Aggregates {
	if mode == domain.ModeSplit {
		a := computeGroup(votes, roles, func(r domain.Role) bool { return r == domain.RoleGroupA })
		b := computeGroup(votes, roles, func(r domain.Role) bool { return r == domain.RoleGroupB })
		return Aggregates{GroupA: &a, GroupB: &b}
	}
	all := computeGroup(votes, roles, func(r domain.Role) bool { return r != domain.RoleObserver })
	return Aggregates{All: &all}
}

func computeGroup(
	votes map[domain.ParticipantID]domain.VoteToken,
	roles map[domain.ParticipantID]domain.Role,
	member func(domain.Role) bool,
) Aggregate {
	var agg Aggregate
	values := make([]float64, 0, len(votes))
	for pid, token := range votes {
		role, ok := roles[pid]
		if !ok || !member(role) {
			continue
		}
		agg.Votes++
		if v, ok := token.Numeric(); ok {
			values = append(values, v)
		}
	}
	agg.Numeric = len(values)
	if len(values) == 0 {
		return agg
	}
	// Fixed order; map iteration order must not leak into the result.
	sort.Float64s(values)
	var mean float64
	for i, v := range values {
		mean += (v - mean) / float64(i+1)
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		mean = 0
	}
	agg.Mean = roundTenth(mean)
	agg.Consensus = len(values) > 1 && values[0] == values[len(values)-1]
	return agg
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
