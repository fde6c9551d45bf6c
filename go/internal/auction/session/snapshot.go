package session

import (
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/schedule"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
)

// Snapshot is the serializable view of a session, written through the
// persistence bridge after every mutation and served to rendering
// clients. Position fields in a loaded snapshot are advisory only; the
// wall clock is the authority and Reconcile arbitrates between them.
type Snapshot struct {
	LeagueID         uuid.UUID                          `json:"league_id"`
	Status           Status                             `json:"status"`
	CurrentTeamIndex int                                `json:"current_team_index"`
	CurrentTeam      models.TournamentTeam              `json:"current_team"`
	TotalTeams       int                                `json:"total_teams"`
	CurrentBid       float64                            `json:"current_bid"`
	HighBidderID     *uuid.UUID                         `json:"high_bidder_id,omitempty"`
	BidHistory       []BidRecord                        `json:"bid_history,omitempty"`
	SecondsRemaining int                                `json:"seconds_remaining"`
	WindowOpensAt    time.Time                          `json:"window_opens_at"`
	Deadline         time.Time                          `json:"deadline"`
	Participants     map[uuid.UUID]models.Participant   `json:"participants"`
	AwardedTeams     map[uuid.UUID][]models.AwardedTeam `json:"awarded_teams"`
	UnsoldTeamIDs    []uuid.UUID                        `json:"unsold_team_ids,omitempty"`
	SavedAt          time.Time                          `json:"saved_at"`
}

// Snapshot copies the session into its serializable form.
func (s *Session) Snapshot(now time.Time) *Snapshot {
	snap := &Snapshot{
		LeagueID:         s.leagueID,
		Status:           s.status,
		CurrentTeamIndex: s.currentTeamIndex,
		TotalTeams:       s.TotalTeams(),
		CurrentBid:       s.currentBid,
		SecondsRemaining: s.SecondsRemaining(now),
		WindowOpensAt:    s.windowOpensAt,
		Deadline:         s.deadline,
		Participants:     make(map[uuid.UUID]models.Participant, len(s.participants)),
		AwardedTeams:     make(map[uuid.UUID][]models.AwardedTeam, len(s.awarded)),
		SavedAt:          now,
	}
	if len(s.sched.Teams) > 0 {
		snap.CurrentTeam = s.CurrentTeam()
	}
	if s.highBidderID != nil {
		id := *s.highBidderID
		snap.HighBidderID = &id
	}
	snap.BidHistory = append(snap.BidHistory, s.bidHistory...)
	for id, p := range s.participants {
		snap.Participants[id] = cloneParticipant(p)
	}
	for id, teams := range s.awarded {
		snap.AwardedTeams[id] = append([]models.AwardedTeam(nil), teams...)
	}
	snap.UnsoldTeamIDs = append(snap.UnsoldTeamIDs, s.unsold...)
	return snap
}

// Restore rebuilds a session verbatim from a persisted snapshot. The
// result may lag the wall clock; callers follow up with Reconcile or the
// orchestrator's fast-forward.
func Restore(snap *Snapshot, sched schedule.Schedule, settings models.AuctionSettings) *Session {
	s := &Session{
		leagueID:         snap.LeagueID,
		sched:            sched,
		settings:         settings,
		status:           snap.Status,
		currentTeamIndex: snap.CurrentTeamIndex,
		currentBid:       snap.CurrentBid,
		windowOpensAt:    snap.WindowOpensAt,
		deadline:         snap.Deadline,
		participants:     make(map[uuid.UUID]*models.Participant, len(snap.Participants)),
		awarded:          make(map[uuid.UUID][]models.AwardedTeam, len(snap.AwardedTeams)),
	}
	if snap.HighBidderID != nil {
		id := *snap.HighBidderID
		s.highBidderID = &id
	}
	s.bidHistory = append(s.bidHistory, snap.BidHistory...)
	for id, p := range snap.Participants {
		cp := cloneParticipant(&p)
		s.participants[id] = &cp
	}
	for id, teams := range snap.AwardedTeams {
		s.awarded[id] = append([]models.AwardedTeam(nil), teams...)
	}
	s.unsold = append(s.unsold, snap.UnsoldTeamIDs...)
	if snap.Status == StatusPaused {
		s.pausedDeadline = time.Duration(snap.SecondsRemaining) * time.Second
		if opens := snap.WindowOpensAt.Sub(snap.SavedAt); opens > 0 {
			s.pausedWindow = opens
		}
	}
	return s
}

// Reconcile aligns the session with the wall-clock-derived position.
//
// The resolver wins for position: the team index and phase timing are
// reset to what the schedule says for now. The snapshot wins for bid
// details, but only when its recorded team index matches the resolver's;
// details for a team whose window has since closed are stale and
// discarded. Participants and awards are never derivable from the clock,
// so they are always taken from the snapshot when one exists.
//
// Reconciling twice at the same instant is a no-op the second time. A
// paused snapshot short-circuits the resolver entirely: the clock was
// frozen on purpose. So does a completed one; completion is terminal
// even when the wall clock says a window would still be open (a skip
// can finish the auction ahead of schedule), so awarded teams are never
// put back on the block.
//
// The owner's bootstrap fast-forward covers server restarts; Reconcile
// is the catch-up for a viewer rendering from a snapshot plus the
// clock, e.g. the state bootstrap of a reconnecting client.
func (s *Session) Reconcile(now time.Time, snap *Snapshot) {
	if snap != nil {
		s.restoreLedger(snap)
		if snap.Status == StatusCompleted {
			s.status = StatusCompleted
			s.currentTeamIndex = snap.CurrentTeamIndex
			s.resetBidState()
			return
		}
		if snap.Status == StatusPaused {
			s.status = StatusPaused
			s.currentTeamIndex = snap.CurrentTeamIndex
			s.currentBid = snap.CurrentBid
			s.highBidderID = nil
			if snap.HighBidderID != nil {
				id := *snap.HighBidderID
				s.highBidderID = &id
			}
			s.bidHistory = append([]BidRecord(nil), snap.BidHistory...)
			s.pausedDeadline = time.Duration(snap.SecondsRemaining) * time.Second
			return
		}
	}

	pos := schedule.Resolve(s.sched, now)
	s.status = StatusActive
	s.applyPosition(pos)
	if pos.Phase == schedule.PhaseCompleted {
		return
	}

	if snap != nil && snap.CurrentTeamIndex == pos.TeamIndex {
		s.currentBid = snap.CurrentBid
		if snap.HighBidderID != nil {
			id := *snap.HighBidderID
			s.highBidderID = &id
		}
		s.bidHistory = append([]BidRecord(nil), snap.BidHistory...)
	}
}

// restoreLedger replaces participants, awards and unsold teams from the
// snapshot.
func (s *Session) restoreLedger(snap *Snapshot) {
	s.participants = make(map[uuid.UUID]*models.Participant, len(snap.Participants))
	for id, p := range snap.Participants {
		cp := cloneParticipant(&p)
		s.participants[id] = &cp
	}
	s.awarded = make(map[uuid.UUID][]models.AwardedTeam, len(snap.AwardedTeams))
	for id, teams := range snap.AwardedTeams {
		s.awarded[id] = append([]models.AwardedTeam(nil), teams...)
	}
	s.unsold = append([]uuid.UUID(nil), snap.UnsoldTeamIDs...)
}
