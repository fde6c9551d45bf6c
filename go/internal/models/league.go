package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeagueStatus defines the lifecycle status of a league.
type LeagueStatus string

const (
	LeagueStatusUpcoming  LeagueStatus = "UPCOMING"
	LeagueStatusActive    LeagueStatus = "ACTIVE"
	LeagueStatusCompleted LeagueStatus = "COMPLETED"
)

// TeamOrdering defines how the tournament team sequence is ordered for
// the auction. The ordering is applied once, before any position is
// resolved, so every process derives the same sequence.
type TeamOrdering string

const (
	TeamOrderingSeed   TeamOrdering = "SEED"
	TeamOrderingRandom TeamOrdering = "RANDOM"
)

// AuctionSettings holds JSONB auction configuration for a league.
type AuctionSettings struct {
	StartAt             time.Time    `json:"start_at"`
	SecondsPerTeam      int          `json:"seconds_per_team"`
	SecondsBetweenTeams int          `json:"seconds_between_teams"`
	SecondsAfterBid     int          `json:"seconds_after_bid"`
	MinimumBid          float64      `json:"minimum_bid"`
	SpendingCap         *float64     `json:"spending_cap,omitempty"`
	TeamOrdering        TeamOrdering `json:"team_ordering,omitempty"`
}

// CapEnabled reports whether a per-participant spending cap is configured.
func (s AuctionSettings) CapEnabled() bool {
	return s.SpendingCap != nil && *s.SpendingCap > 0
}

// Validate rejects settings that cannot drive an auction schedule.
// Settings arrive as client-supplied JSON, so both the write path and
// the owner bootstrap check them before any position is derived from
// them.
func (s AuctionSettings) Validate() error {
	if s.SecondsPerTeam < 1 {
		return fmt.Errorf("seconds_per_team must be at least 1, got %d", s.SecondsPerTeam)
	}
	if s.SecondsBetweenTeams < 0 {
		return fmt.Errorf("seconds_between_teams must not be negative, got %d", s.SecondsBetweenTeams)
	}
	if s.SecondsAfterBid < 0 {
		return fmt.Errorf("seconds_after_bid must not be negative, got %d", s.SecondsAfterBid)
	}
	if s.MinimumBid < 0 {
		return fmt.Errorf("minimum_bid must not be negative, got %v", s.MinimumBid)
	}
	if s.SpendingCap != nil && *s.SpendingCap <= 0 {
		return fmt.Errorf("spending_cap must be positive when set, got %v", *s.SpendingCap)
	}
	return nil
}

// League represents a calcutta league tied to one tournament.
type League struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	TournamentID    uuid.UUID       `json:"tournament_id"`
	CommissionerID  uuid.UUID       `json:"commissioner_id"`
	MemberIDs       []uuid.UUID     `json:"member_ids"`
	Status          LeagueStatus    `json:"status"`
	AuctionSettings AuctionSettings `json:"auction_settings"`
	Season          string          `json:"season"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
