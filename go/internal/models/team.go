package models

import "github.com/google/uuid"

// TournamentTeam is one entrant in a tournament bracket, in the order it
// comes up for bid during the auction.
type TournamentTeam struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Seed   int       `json:"seed"`
	Region string    `json:"region"`
}

// AwardedTeam records a team won at auction and the price paid.
type AwardedTeam struct {
	TeamID uuid.UUID `json:"team_id"`
	Name   string    `json:"name"`
	Seed   int       `json:"seed"`
	Region string    `json:"region"`
	Price  float64   `json:"price"`
}
