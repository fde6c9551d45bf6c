package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
)

// AuctionEvent is the frame pushed to WebSocket clients. It mirrors the
// JetStream envelope with the payload passed through untouched, so the
// browser sees exactly what the orchestrator published.
type AuctionEvent struct {
	ID        string          `json:"id"`
	LeagueID  string          `json:"league_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// knownEventTypes gates what the gateway forwards; anything else on the
// stream is a producer bug and gets dropped with an error log.
var knownEventTypes = map[string]bool{
	events.TypeAuctionStarted:   true,
	events.TypeBidPlaced:        true,
	events.TypeBidRejected:      true,
	events.TypeTeamAwarded:      true,
	events.TypeTeamUnsold:       true,
	events.TypeBufferStarted:    true,
	events.TypeAuctionPaused:    true,
	events.TypeAuctionResumed:   true,
	events.TypeAuctionCompleted: true,
}

func toAuctionEvent(env events.Envelope) (*AuctionEvent, error) {
	if !knownEventTypes[env.EventType] {
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}
	return &AuctionEvent{
		ID:        env.EventID,
		LeagueID:  env.LeagueID,
		Type:      env.EventType,
		Timestamp: env.Timestamp,
		Data:      env.Payload,
	}, nil
}
