package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
	"github.com/google/uuid"
)

func TestToAuctionEventPassesPayloadThrough(t *testing.T) {
	env := events.Envelope{
		EventID:   uuid.New().String(),
		EventType: events.TypeBidPlaced,
		LeagueID:  uuid.New().String(),
		Timestamp: time.Now(),
		Payload:   json.RawMessage(`{"amount":42.5}`),
	}

	got, err := toAuctionEvent(env)
	if err != nil {
		t.Fatalf("toAuctionEvent: %v", err)
	}
	if got.ID != env.EventID || got.LeagueID != env.LeagueID || got.Type != env.EventType {
		t.Errorf("envelope fields lost: %+v", got)
	}
	if string(got.Data) != `{"amount":42.5}` {
		t.Errorf("payload not passed through verbatim: %s", got.Data)
	}
}

func TestToAuctionEventRejectsUnknownType(t *testing.T) {
	env := events.Envelope{
		EventID:   uuid.New().String(),
		EventType: "SomethingElse",
		LeagueID:  uuid.New().String(),
	}
	if _, err := toAuctionEvent(env); err == nil {
		t.Error("unknown event type should be rejected")
	}
}
