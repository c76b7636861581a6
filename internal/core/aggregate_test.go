package core

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Estimate/internal/domain"
)

func TestComputeUnifiedIgnoresSentinels(t *testing.T) {
	votes := map[domain.ParticipantID]domain.VoteToken{"a": "1", "b": "2", "c": "coffee"}
	roles := map[domain.ParticipantID]domain.Role{"a": domain.RoleGroupA, "b": domain.RoleGroupA, "c": domain.RoleGroupA}

	got := Compute(domain.ModeUnified, votes, roles)
	if got.All == nil {
		t.Fatalf("expected unified aggregate")
	}
	if got.All.Mean != 1.5 || got.All.Votes != 3 || got.All.Numeric != 2 {
		t.Fatalf("unexpected aggregate %+v", *got.All)
	}
	if got.GroupA != nil || got.GroupB != nil {
		t.Fatalf("unified room must not report group aggregates")
	}
}

func TestComputeNoNumericVotes(t *testing.T) {
	votes := map[domain.ParticipantID]domain.VoteToken{"a": "?", "b": "break"}
	roles := map[domain.ParticipantID]domain.Role{"a": domain.RoleGroupA, "b": domain.RoleGroupA}

	got := Compute(domain.ModeUnified, votes, roles)
	if got.All.Mean != 0 || got.All.Numeric != 0 || got.All.Votes != 2 {
		t.Fatalf("expected no data aggregate, got %+v", *got.All)
	}

	empty := Compute(domain.ModeSplit, nil, nil)
	if empty.GroupA.Mean != 0 || empty.GroupB.Mean != 0 {
		t.Fatalf("empty split aggregate must be zero, got %+v %+v", *empty.GroupA, *empty.GroupB)
	}
}

func TestComputeSplitGroups(t *testing.T) {
	votes := map[domain.ParticipantID]domain.VoteToken{"d1": "2", "d2": "4", "q1": "5", "o": "100"}
	roles := map[domain.ParticipantID]domain.Role{
		"d1": domain.RoleGroupA, "d2": domain.RoleGroupA,
		"q1": domain.RoleGroupB, "o": domain.RoleObserver,
	}
	got := Compute(domain.ModeSplit, votes, roles)
	if got.GroupA.Mean != 3.0 || got.GroupB.Mean != 5.0 {
		t.Fatalf("expected 3.0/5.0, got %v/%v", got.GroupA.Mean, got.GroupB.Mean)
	}
	if got.All != nil {
		t.Fatalf("split room must not report unified aggregate")
	}
}

func TestComputeRoundingAndConsensus(t *testing.T) {
	roles := map[domain.ParticipantID]domain.Role{"a": domain.RoleGroupA, "b": domain.RoleGroupA, "c": domain.RoleGroupA}

	got := Compute(domain.ModeUnified, map[domain.ParticipantID]domain.VoteToken{"a": "1", "b": "2", "c": "2"}, roles)
	if got.All.Mean != 1.7 {
		t.Fatalf("expected 1.7, got %v", got.All.Mean)
	}
	if got.All.Consensus {
		t.Fatalf("mixed votes are not a consensus")
	}

	same := Compute(domain.ModeUnified, map[domain.ParticipantID]domain.VoteToken{"a": "8", "b": "8"}, roles)
	if !same.All.Consensus {
		t.Fatalf("equal votes are a consensus")
	}
	single := Compute(domain.ModeUnified, map[domain.ParticipantID]domain.VoteToken{"a": "8"}, roles)
	if single.All.Consensus {
		t.Fatalf("one vote is not a consensus")
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	votes := map[domain.ParticipantID]domain.VoteToken{"a": "0.1", "b": "0.2", "c": "0.7", "d": "13"}
	roles := map[domain.ParticipantID]domain.Role{"a": domain.RoleGroupA, "b": domain.RoleGroupA, "c": domain.RoleGroupA, "d": domain.RoleGroupA}
	first := Compute(domain.ModeUnified, votes, roles)
	for i := 0; i < 50; i++ {
		again := Compute(domain.ModeUnified, votes, roles)
		if *again.All != *first.All {
			t.Fatalf("run %d: %+v != %+v", i, *again.All, *first.All)
		}
	}
}

func TestComputeStaysFinite(t *testing.T) {
	// Tokens are bounded by ParseVote; Compute itself must still never overflow.
	votes := map[domain.ParticipantID]domain.VoteToken{"a": "1000000", "b": "1000000", "c": "-1000000"}
	roles := map[domain.ParticipantID]domain.Role{"a": domain.RoleGroupA, "b": domain.RoleGroupA, "c": domain.RoleGroupA}
	got := Compute(domain.ModeUnified, votes, roles)
	if got.All.Mean != 333333.3 {
		t.Fatalf("expected 333333.3, got %v", got.All.Mean)
	}
	if _, err := json.Marshal(got); err != nil {
		t.Fatalf("aggregate must encode: %v", err)
	}
}
