package models

import "github.com/google/uuid"

// Participant is one league member's standing within an auction.
//
// TotalSpent always accumulates awarded prices. RemainingBudget is set
// only when the league configures a spending cap; without a cap it stays
// nil and displays derive from TotalSpent instead.
type Participant struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"display_name"`
	TotalSpent      float64   `json:"total_spent"`
	TeamsWon        int       `json:"teams_won"`
	RemainingBudget *float64  `json:"remaining_budget,omitempty"`
}

// CanAfford reports whether the participant can cover a bid of amount.
// Unbounded when no cap is configured.
func (p Participant) CanAfford(amount float64) bool {
	if p.RemainingBudget == nil {
		return true
	}
	return amount <= *p.RemainingBudget
}
