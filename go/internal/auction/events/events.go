package events

import (
	"encoding/json"
	"time"

	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
)

// Event type names shared by the orchestrator (producer) and the
// gateway (consumer).
const (
	TypeAuctionStarted   = "AuctionStarted"
	TypeBidPlaced        = "BidPlaced"
	TypeBidRejected      = "BidRejected"
	TypeTeamAwarded      = "TeamAwarded"
	TypeTeamUnsold       = "TeamUnsold"
	TypeBufferStarted    = "BufferStarted"
	TypeAuctionPaused    = "AuctionPaused"
	TypeAuctionResumed   = "AuctionResumed"
	TypeAuctionCompleted = "AuctionCompleted"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	LeagueID  string          `json:"leagueId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// AuctionStartedPayload is emitted when a session owner begins running a
// league's auction.
type AuctionStartedPayload struct {
	LeagueID   string    `json:"league_id"`
	StartedAt  time.Time `json:"started_at"`
	TotalTeams int       `json:"total_teams"`
}

// BidPlacedPayload is emitted for every accepted bid.
type BidPlacedPayload struct {
	TeamIndex   int       `json:"team_index"`
	TeamID      string    `json:"team_id"`
	BidderID    string    `json:"bidder_id"`
	BidderName  string    `json:"bidder_name"`
	Amount      float64   `json:"amount"`
	DeadlineAt  time.Time `json:"deadline_at"`
	PlacedAt    time.Time `json:"placed_at"`
}

// BidRejectedPayload is emitted when a bid fails validation. The
// gateway delivers it to the submitter's connections only; the rest of
// the league never sees rejected bids.
type BidRejectedPayload struct {
	TeamIndex  int       `json:"team_index"`
	BidderID   string    `json:"bidder_id"`
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

// TeamAwardedPayload is emitted when a bidding window closes with a high
// bidder.
type TeamAwardedPayload struct {
	TeamIndex  int                `json:"team_index"`
	Team       models.AwardedTeam `json:"team"`
	WinnerID   string             `json:"winner_id"`
	WinnerName string             `json:"winner_name"`
	AwardedAt  time.Time          `json:"awarded_at"`
}

// TeamUnsoldPayload is emitted when a window closes with no bids.
type TeamUnsoldPayload struct {
	TeamIndex int       `json:"team_index"`
	TeamID    string    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	ClosedAt  time.Time `json:"closed_at"`
}

// BufferStartedPayload is emitted between teams so viewers can show the
// inter-team countdown and the next team up.
type BufferStartedPayload struct {
	NextTeamIndex int       `json:"next_team_index"`
	NextTeamID    string    `json:"next_team_id"`
	NextTeamName  string    `json:"next_team_name"`
	OpensAt       time.Time `json:"opens_at"`
	DeadlineAt    time.Time `json:"deadline_at"`
}

// AuctionPausedPayload is emitted when the commissioner pauses the clock.
type AuctionPausedPayload struct {
	PausedAt         time.Time `json:"paused_at"`
	SecondsRemaining int       `json:"seconds_remaining"`
}

// AuctionResumedPayload is emitted when the clock restarts.
type AuctionResumedPayload struct {
	ResumedAt  time.Time `json:"resumed_at"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// AuctionCompletedPayload is emitted once, after the last team's window
// closes.
type AuctionCompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
	TeamsSold   int       `json:"teams_sold"`
	TeamsUnsold int       `json:"teams_unsold"`
}

// NewEnvelope wraps a payload, assigning the event id used for
// JetStream deduplication.
func NewEnvelope(eventType string, leagueID uuid.UUID, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		LeagueID:  leagueID.String(),
		Timestamp: at,
		Payload:   data,
	}, nil
}
