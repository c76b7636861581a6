package core

import (
	"time"

	"github.com/dkeye/Estimate/internal/domain"
)

// Room is the voting state machine of one room. It is not safe for
// concurrent use; the owner serializes every call (one writer per room).
// Every mutating method either succeeds and returns the events to broadcast,
// or returns an error and leaves the room untouched.
type Room struct {
	id       domain.RoomID
	mode     domain.Mode
	phase    domain.Phase
	hostID   domain.ParticipantID
	settings domain.Settings

	participants map[domain.ParticipantID]*domain.Participant
	order        []domain.ParticipantID
	votes        map[domain.ParticipantID]domain.VoteToken
	aggregates   *Aggregates

	createdAt    time.Time
	lastActivity time.Time
	now          func() time.Time
}

// NewRoom creates an idle room owned by host. The host flag is forced here
// and never handed to anyone else.
func NewRoom(id domain.RoomID, mode domain.Mode, host *domain.Participant) *Room {
	return newRoomAt(id, mode, host, time.Now)
}

func newRoomAt(id domain.RoomID, mode domain.Mode, host *domain.Participant, now func() time.Time) *Room {
	host.IsHost = true
	if mode == domain.ModeUnified && host.Role == domain.RoleGroupB {
		host.Role = domain.RoleGroupA
	}
	ts := now().UTC()
	return &Room{
		id:           id,
		mode:         mode,
		phase:        domain.PhaseIdle,
		hostID:       host.ID,
		settings:     domain.DefaultSettings(),
		participants: map[domain.ParticipantID]*domain.Participant{host.ID: host},
		order:        []domain.ParticipantID{host.ID},
		votes:        make(map[domain.ParticipantID]domain.VoteToken),
		createdAt:    ts,
		lastActivity: ts,
		now:          now,
	}
}

func (r *Room) ID() domain.RoomID                  { return r.id }
func (r *Room) Mode() domain.Mode                  { return r.mode }
func (r *Room) Phase() domain.Phase                { return r.phase }
func (r *Room) HostID() domain.ParticipantID       { return r.hostID }
func (r *Room) Settings() domain.Settings          { return r.settings }
func (r *Room) CreatedAt() time.Time               { return r.createdAt }
func (r *Room) LastActivity() time.Time            { return r.lastActivity }
func (r *Room) IsHost(p domain.ParticipantID) bool { return p != "" && p == r.hostID }

// Participant returns a copy of the participant record.
func (r *Room) Participant(id domain.ParticipantID) (domain.Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// Participants returns copies in join order.
func (r *Room) Participants() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.participants[id])
	}
	return out
}

func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.participants {
		if p.Connected {
			n++
		}
	}
	return n
}

// Votes returns a copy of the current vote map.
func (r *Room) Votes() map[domain.ParticipantID]domain.VoteToken {
	out := make(map[domain.ParticipantID]domain.VoteToken, len(r.votes))
	for k, v := range r.votes {
		out[k] = v
	}
	return out
}

func (r *Room) Aggregates() (Aggregates, bool) {
	if r.aggregates == nil {
		return Aggregates{}, false
	}
	return *r.aggregates, true
}

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		ID:           r.id,
		Mode:         r.mode,
		Phase:        r.phase,
		Participants: len(r.participants),
		Connected:    r.ConnectedCount(),
	}
}

// Attach resolves a participant by supplied id (reconnect) or mints a new one.
// A reconnect keeps role, host flag and any cast vote; only the display name
// may change.
func (r *Room) Attach(supplied domain.ParticipantID, name string, role domain.Role) (domain.Participant, bool, []Event, error) {
	if p, ok := r.participants[supplied]; ok && supplied != "" {
		if name != "" && name != p.DisplayName {
			if err := p.SetDisplayName(name); err != nil {
				return domain.Participant{}, false, nil, err
			}
		}
		p.Connected = true
		r.touch()
		return *p, true, []Event{r.presence()}, nil
	}
	if r.mode == domain.ModeUnified && role == domain.RoleGroupB {
		role = domain.RoleGroupA
	}
	p, err := domain.NewParticipant(name, role, false)
	if err != nil {
		return domain.Participant{}, false, nil, err
	}
	p.Connected = true
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
	r.touch()
	return *p, false, []Event{r.presence()}, nil
}

// MarkDisconnected keeps the record and the vote so the seat can be resumed.
func (r *Room) MarkDisconnected(id domain.ParticipantID) ([]Event, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	if !p.Connected {
		return nil, nil
	}
	p.Connected = false
	r.touch()
	return []Event{r.presence()}, nil
}

func (r *Room) StartVote(actor domain.ParticipantID) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if r.phase != domain.PhaseIdle {
		return nil, domain.ErrInvalidPhase
	}
	r.phase = domain.PhaseVoting
	r.clearVotes()
	r.touch()
	return []Event{r.event(EventVoteStarted, PhasePayload{Phase: r.phase})}, nil
}

// CastVote records the caller's vote and, with auto-reveal on, reveals as
// soon as every eligible participant has voted. The vote_update event always
// precedes the revealed event.
func (r *Room) CastVote(actor domain.ParticipantID, raw string) ([]Event, error) {
	p, ok := r.participants[actor]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	if !r.phase.Eligible(p.Role) {
		return nil, domain.ErrIneligibleVoter
	}
	token, err := domain.ParseVote(raw)
	if err != nil {
		return nil, err
	}
	r.votes[actor] = token
	r.touch()
	events := []Event{r.event(EventVoteUpdate, VoteUpdatePayload{ParticipantID: actor, HasVoted: true})}
	if r.settings.AutoReveal && r.allEligibleVoted() {
		events = append(events, r.reveal())
	}
	return events, nil
}

func (r *Room) Reveal(actor domain.ParticipantID) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if !r.phase.IsVoting() {
		return nil, domain.ErrInvalidPhase
	}
	r.touch()
	return []Event{r.reveal()}, nil
}

func (r *Room) Reset(actor domain.ParticipantID) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if r.phase != domain.PhaseRevealed {
		return nil, domain.ErrInvalidPhase
	}
	r.phase = domain.PhaseIdle
	r.clearVotes()
	r.touch()
	return []Event{r.event(EventReset, PhasePayload{Phase: r.phase})}, nil
}

// PartialRevote reopens voting for one group of a split room and drops only
// that group's votes.
func (r *Room) PartialRevote(actor domain.ParticipantID, target domain.Role) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if r.mode != domain.ModeSplit {
		return nil, domain.ErrInvalidMode
	}
	var next domain.Phase
	switch target {
	case domain.RoleGroupA:
		next = domain.PhaseVotingGroupA
	case domain.RoleGroupB:
		next = domain.PhaseVotingGroupB
	default:
		return nil, domain.ErrInvalidMode
	}
	if r.phase != domain.PhaseRevealed {
		return nil, domain.ErrInvalidPhase
	}
	for pid := range r.votes {
		if p, ok := r.participants[pid]; ok && p.Role == target {
			delete(r.votes, pid)
		}
	}
	r.aggregates = nil
	r.phase = next
	r.touch()
	return []Event{r.event(EventPartialRevote, PartialRevotePayload{Phase: next, TargetGroup: target})}, nil
}

func (r *Room) UpdateSettings(actor domain.ParticipantID, patch domain.SettingsPatch) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, nil
	}
	r.settings = r.settings.Apply(patch)
	r.touch()
	return []Event{r.event(EventSettingsUpdated, SettingsPayload{Settings: r.settings})}, nil
}

// EndSession only authorizes and builds the notice; removing the room from
// the registry is the caller's job.
func (r *Room) EndSession(actor domain.ParticipantID) ([]Event, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	return []Event{r.Ended(EndReasonHost)}, nil
}

// Ended builds a session_ended notice without any authorization check.
func (r *Room) Ended(reason string) Event {
	return r.event(EventSessionEnded, SessionEndedPayload{Reason: reason})
}

func (r *Room) SendReaction(actor domain.ParticipantID, reaction domain.ReactionID) ([]Event, error) {
	if _, ok := r.participants[actor]; !ok {
		return nil, domain.ErrParticipantNotFound
	}
	r.touch()
	return []Event{r.event(EventReaction, ReactionPayload{ParticipantID: actor, ReactionID: reaction})}, nil
}

func (r *Room) RegenerateAvatar(actor domain.ParticipantID) ([]Event, error) {
	p, ok := r.participants[actor]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	p.RegenerateAvatar()
	r.touch()
	return []Event{r.presence()}, nil
}

func (r *Room) requireHost(actor domain.ParticipantID) error {
	if _, ok := r.participants[actor]; !ok {
		return domain.ErrParticipantNotFound
	}
	if !r.IsHost(actor) {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (r *Room) reveal() Event {
	agg := Compute(r.mode, r.votes, r.roles())
	r.aggregates = &agg
	r.phase = domain.PhaseRevealed
	return r.event(EventRevealed, RevealedPayload{Votes: r.Votes(), Aggregates: agg})
}

// allEligibleVoted ignores disconnected participants that have not voted, so
// an abandoned seat cannot block auto-reveal.
func (r *Room) allEligibleVoted() bool {
	voted := 0
	for _, p := range r.participants {
		if !r.phase.Eligible(p.Role) {
			continue
		}
		if _, ok := r.votes[p.ID]; ok {
			voted++
			continue
		}
		if p.Connected {
			return false
		}
	}
	return voted > 0
}

func (r *Room) roles() map[domain.ParticipantID]domain.Role {
	out := make(map[domain.ParticipantID]domain.Role, len(r.participants))
	for id, p := range r.participants {
		out[id] = p.Role
	}
	return out
}

func (r *Room) clearVotes() {
	r.votes = make(map[domain.ParticipantID]domain.VoteToken)
	r.aggregates = nil
}

func (r *Room) presence() Event {
	return r.event(EventPresence, PresencePayload{Participants: r.Participants()})
}

func (r *Room) event(t EventType, payload any) Event {
	return Event{Type: t, RoomID: r.id, Payload: payload}
}

func (r *Room) touch() {
	r.lastActivity = r.now().UTC()
}
