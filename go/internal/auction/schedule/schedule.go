// Package schedule derives auction position purely from the wall clock.
//
// Given a fixed start instant, a per-team bidding duration and an
// inter-team buffer, the position of an auction is a function of the
// current time alone. Any two processes resolving the same schedule at
// the same instant agree on which team is up and how long remains, which
// is what lets a cold-started owner or a reconnecting viewer reconstruct
// state without a handshake.
package schedule

import (
	"time"

	"github.com/bracketbid/calcutta/go/internal/models"
)

// Phase is what the auction clock is currently counting down.
type Phase string

const (
	// PhaseBidding means the current team's bidding window is open.
	PhaseBidding Phase = "BIDDING"
	// PhaseBuffer means the current team's window has closed and the
	// next team's window has not yet opened.
	PhaseBuffer Phase = "BUFFER"
	// PhaseCompleted means every team's window has closed.
	PhaseCompleted Phase = "COMPLETED"
)

// Schedule is the immutable timing layout of one auction, derived from
// league configuration before the auction starts.
type Schedule struct {
	StartAt             time.Time
	SecondsPerTeam      int
	SecondsBetweenTeams int
	Teams               []models.TournamentTeam
}

// Position is the wall-clock-derived truth about an auction at one
// instant. It carries no bid details; those live in the session and are
// reconciled separately.
type Position struct {
	TeamIndex        int
	Phase            Phase
	SecondsRemaining int
}

// Started reports whether the auction's scheduled start has passed.
// Resolve must not be called before the start instant.
func (s Schedule) Started(now time.Time) bool {
	return !now.Before(s.StartAt)
}

// CycleSeconds is the length of one full team slot: bidding window plus
// the buffer before the next team.
func (s Schedule) CycleSeconds() int {
	return s.SecondsPerTeam + s.SecondsBetweenTeams
}

// Resolve computes the position of the auction at now.
//
// Elapsed whole seconds since start are divided into fixed-length
// cycles, one per team. Within a cycle the first SecondsPerTeam seconds
// are the bidding window and the rest is buffer. Once every team's cycle
// has elapsed the auction is completed and stays completed.
func Resolve(s Schedule, now time.Time) Position {
	total := len(s.Teams)
	if total == 0 {
		return Position{TeamIndex: 0, Phase: PhaseCompleted}
	}

	elapsed := int(now.Sub(s.StartAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	cycle := s.CycleSeconds()
	teamsElapsed := elapsed / cycle
	if teamsElapsed >= total {
		return Position{TeamIndex: total - 1, Phase: PhaseCompleted}
	}

	within := elapsed % cycle
	if within < s.SecondsPerTeam {
		return Position{
			TeamIndex:        teamsElapsed,
			Phase:            PhaseBidding,
			SecondsRemaining: s.SecondsPerTeam - within,
		}
	}
	return Position{
		TeamIndex:        teamsElapsed,
		Phase:            PhaseBuffer,
		SecondsRemaining: cycle - within,
	}
}

// NextBoundary returns the instant the phase active at now ends. For a
// completed auction it returns now unchanged.
func NextBoundary(s Schedule, now time.Time) time.Time {
	pos := Resolve(s, now)
	if pos.Phase == PhaseCompleted {
		return now
	}
	return now.Add(time.Duration(pos.SecondsRemaining) * time.Second)
}
