// Package session holds the mutable state of one running auction: the
// team on the block, the high bid, bid history, participant budgets and
// the map of awarded teams.
//
// A Session is not safe for concurrent use. The orchestrator owns it and
// serializes every mutation through its command loop; everything else
// sees read-only snapshots.
package session

import (
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/schedule"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
)

// Status defines the lifecycle status of an auction session.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
)

// BidRecord is one bid against the current team. History is kept
// most-recent-first and cleared when the team is awarded.
type BidRecord struct {
	BidderID uuid.UUID `json:"bidder_id"`
	Amount   float64   `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// Outcome reports what AdvanceTeam did with the team whose window closed.
type Outcome struct {
	TeamIndex int
	Team      models.TournamentTeam
	// Awarded is set when the team sold; nil when it went unsold.
	Awarded  *models.AwardedTeam
	WinnerID uuid.UUID
	// Completed is true when this was the last team.
	Completed bool
}

// Session is the single source of truth for one league's auction.
type Session struct {
	leagueID uuid.UUID
	sched    schedule.Schedule
	settings models.AuctionSettings

	status           Status
	currentTeamIndex int
	currentBid       float64
	highBidderID     *uuid.UUID
	bidHistory       []BidRecord

	participants map[uuid.UUID]*models.Participant
	awarded      map[uuid.UUID][]models.AwardedTeam
	unsold       []uuid.UUID

	// windowOpensAt is when the current team's bidding window opens
	// (equal to or before deadline; later than now during a buffer).
	// deadline is when the window closes; bids extend it, the schedule
	// never shortens it.
	windowOpensAt time.Time
	deadline      time.Time

	// remaining durations captured by Pause, reapplied by Resume.
	pausedWindow   time.Duration
	pausedDeadline time.Duration
}

// New creates a session for a league whose scheduled start has passed,
// positioned wherever the wall clock says the auction is. One
// participant is set up per league member; remaining budgets are set
// only when a spending cap is configured.
func New(leagueID uuid.UUID, sched schedule.Schedule, settings models.AuctionSettings, members []models.Participant, now time.Time) *Session {
	s := &Session{
		leagueID:     leagueID,
		sched:        sched,
		settings:     settings,
		status:       StatusActive,
		participants: make(map[uuid.UUID]*models.Participant, len(members)),
		awarded:      make(map[uuid.UUID][]models.AwardedTeam),
	}
	for _, m := range members {
		p := m
		p.TotalSpent = 0
		p.TeamsWon = 0
		if settings.CapEnabled() {
			cap := *settings.SpendingCap
			p.RemainingBudget = &cap
		} else {
			p.RemainingBudget = nil
		}
		s.participants[p.ID] = &p
	}

	pos := schedule.Resolve(sched, now)
	s.applyPosition(pos)
	return s
}

// applyPosition moves the session to a resolver-derived position with
// fresh per-team bid defaults. Bid details do not survive this; callers
// that want them restored go through Reconcile.
func (s *Session) applyPosition(pos schedule.Position) {
	s.currentTeamIndex = pos.TeamIndex
	s.resetBidState()
	if pos.Phase == schedule.PhaseCompleted {
		s.status = StatusCompleted
		return
	}

	cycle := time.Duration(s.sched.CycleSeconds()) * time.Second
	opens := s.sched.StartAt.Add(time.Duration(pos.TeamIndex) * cycle)
	s.windowOpensAt = opens
	s.deadline = opens.Add(time.Duration(s.sched.SecondsPerTeam) * time.Second)
}

func (s *Session) resetBidState() {
	s.currentBid = s.settings.MinimumBid
	s.highBidderID = nil
	s.bidHistory = nil
}

// LeagueID returns the league this session belongs to.
func (s *Session) LeagueID() uuid.UUID { return s.leagueID }

// Status returns the session lifecycle status.
func (s *Session) Status() Status { return s.status }

// CurrentTeamIndex returns the index of the team on the block.
func (s *Session) CurrentTeamIndex() int { return s.currentTeamIndex }

// CurrentTeam returns the team on the block.
func (s *Session) CurrentTeam() models.TournamentTeam {
	return s.sched.Teams[s.currentTeamIndex]
}

// Deadline returns when the current bidding window closes.
func (s *Session) Deadline() time.Time { return s.deadline }

// WindowOpensAt returns when the current bidding window opens.
func (s *Session) WindowOpensAt() time.Time { return s.windowOpensAt }

// SecondsRemaining returns whole seconds until the current window
// closes, never negative. While paused it reports the frozen remainder.
func (s *Session) SecondsRemaining(now time.Time) int {
	if s.status == StatusPaused {
		return int(s.pausedDeadline / time.Second)
	}
	rem := int(s.deadline.Sub(now) / time.Second)
	if rem < 0 {
		return 0
	}
	return rem
}

// InBuffer reports whether now falls between teams, before the current
// team's window opens.
func (s *Session) InBuffer(now time.Time) bool {
	return s.status == StatusActive && now.Before(s.windowOpensAt)
}

// PlaceBid validates and applies a bid from participantID.
//
// A bid must arrive while the window is open, strictly exceed the
// current bid and fit the bidder's remaining budget. On acceptance the
// window close is pushed out to at least secondsAfterBid from now, never
// pulled in.
func (s *Session) PlaceBid(participantID uuid.UUID, amount float64, now time.Time) (BidRecord, error) {
	if s.status != StatusActive || now.Before(s.windowOpensAt) || !now.Before(s.deadline) {
		return BidRecord{}, ErrAuctionNotActive
	}
	p, ok := s.participants[participantID]
	if !ok {
		return BidRecord{}, ErrUnknownParticipant
	}
	if amount <= s.currentBid {
		return BidRecord{}, ErrBidTooLow
	}
	if !p.CanAfford(amount) {
		return BidRecord{}, ErrExceedsBudget
	}

	s.currentBid = amount
	id := participantID
	s.highBidderID = &id

	rec := BidRecord{BidderID: participantID, Amount: amount, PlacedAt: now}
	s.bidHistory = append([]BidRecord{rec}, s.bidHistory...)

	if grace := time.Duration(s.settings.SecondsAfterBid) * time.Second; s.deadline.Sub(now) < grace {
		s.deadline = now.Add(grace)
	}
	return rec, nil
}

// AdvanceTeam closes the current team's window: awards the team to the
// high bidder if there is one, otherwise lets it go unsold, then moves
// to the next team or completes the auction.
//
// Award before advance, so budget mutations always refer to the team
// whose window just closed.
func (s *Session) AdvanceTeam(now time.Time) Outcome {
	team := s.CurrentTeam()
	out := Outcome{TeamIndex: s.currentTeamIndex, Team: team}

	if s.highBidderID != nil {
		winner := s.participants[*s.highBidderID]
		award := models.AwardedTeam{
			TeamID: team.ID,
			Name:   team.Name,
			Seed:   team.Seed,
			Region: team.Region,
			Price:  s.currentBid,
		}
		s.awarded[winner.ID] = append(s.awarded[winner.ID], award)
		winner.TotalSpent += award.Price
		winner.TeamsWon++
		if winner.RemainingBudget != nil {
			*winner.RemainingBudget -= award.Price
		}
		out.Awarded = &award
		out.WinnerID = winner.ID
	} else {
		s.unsold = append(s.unsold, team.ID)
	}

	next := s.currentTeamIndex + 1
	if next >= len(s.sched.Teams) {
		s.status = StatusCompleted
		s.resetBidState()
		out.Completed = true
		return out
	}

	s.currentTeamIndex = next
	s.resetBidState()
	s.windowOpensAt = now.Add(time.Duration(s.sched.SecondsBetweenTeams) * time.Second)
	s.deadline = s.windowOpensAt.Add(time.Duration(s.sched.SecondsPerTeam) * time.Second)
	return out
}

// Pause freezes the countdown. No-op unless active.
func (s *Session) Pause(now time.Time) bool {
	if s.status != StatusActive {
		return false
	}
	s.status = StatusPaused
	s.pausedDeadline = s.deadline.Sub(now)
	s.pausedWindow = s.windowOpensAt.Sub(now)
	if s.pausedWindow < 0 {
		s.pausedWindow = 0
	}
	if s.pausedDeadline < 0 {
		s.pausedDeadline = 0
	}
	return true
}

// Resume unfreezes the countdown with the remainder it was paused at.
func (s *Session) Resume(now time.Time) bool {
	if s.status != StatusPaused {
		return false
	}
	s.status = StatusActive
	s.windowOpensAt = now.Add(s.pausedWindow)
	s.deadline = now.Add(s.pausedDeadline)
	s.pausedWindow = 0
	s.pausedDeadline = 0
	return true
}

// Participant returns a copy of one participant's standing.
func (s *Session) Participant(id uuid.UUID) (models.Participant, bool) {
	p, ok := s.participants[id]
	if !ok {
		return models.Participant{}, false
	}
	return cloneParticipant(p), true
}

// TotalTeams returns the number of teams in the auction sequence.
func (s *Session) TotalTeams() int { return len(s.sched.Teams) }

func cloneParticipant(p *models.Participant) models.Participant {
	out := *p
	if p.RemainingBudget != nil {
		b := *p.RemainingBudget
		out.RemainingBudget = &b
	}
	return out
}
