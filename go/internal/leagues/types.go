package leagues

import (
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
)

// CreateLeagueRequest carries the fields needed to create a league.
type CreateLeagueRequest struct {
	Name            string                 `json:"name"`
	TournamentID    uuid.UUID              `json:"tournament_id"`
	CommissionerID  uuid.UUID              `json:"commissioner_id"`
	MemberIDs       []uuid.UUID            `json:"member_ids"`
	AuctionSettings models.AuctionSettings `json:"auction_settings"`
	Season          string                 `json:"season"`
}

// UpdateAuctionSettingsRequest replaces a league's auction settings.
// Only allowed before the auction starts; the schedule is immutable
// once the clock is running.
type UpdateAuctionSettingsRequest struct {
	AuctionSettings models.AuctionSettings `json:"auction_settings"`
}
