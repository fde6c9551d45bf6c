package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bracketbid/calcutta/go/internal/auction/orchestrator"
	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OwnerRegistry resolves the running auction owner for a league. The
// orchestrator supervisor implements this.
type OwnerRegistry interface {
	Owner(leagueID uuid.UUID) (*orchestrator.Owner, bool)
}

// IntentHandler translates client HTTP intents into owner commands.
// Clients never mutate state themselves; every request here is routed
// to the league's single session owner, which decides.
type IntentHandler struct {
	owners OwnerRegistry
}

// NewIntentHandler creates an intent handler over the owner registry.
func NewIntentHandler(owners OwnerRegistry) *IntentHandler {
	return &IntentHandler{owners: owners}
}

// BidRequest is the body of a bid intent.
type BidRequest struct {
	ParticipantID string  `json:"participant_id"`
	Amount        float64 `json:"amount"`
}

// BidResponse echoes the accepted bid.
type BidResponse struct {
	Accepted bool              `json:"accepted"`
	Bid      session.BidRecord `json:"bid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleBid handles POST /api/leagues/{id}/auction/bids.
func (h *IntentHandler) HandleBid(w http.ResponseWriter, r *http.Request) {
	leagueID, owner, ok := h.resolveOwner(w, r)
	if !ok {
		return
	}

	var req BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant_id")
		return
	}

	rec, err := owner.PlaceBid(r.Context(), participantID, req.Amount)
	if err != nil {
		writeBidError(w, err)
		return
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Str("participant_id", participantID.String()).
		Float64("amount", req.Amount).
		Msg("bid accepted via gateway")
	writeJSON(w, http.StatusOK, BidResponse{Accepted: true, Bid: rec})
}

// HandlePause handles POST /api/leagues/{id}/auction/pause.
func (h *IntentHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := h.resolveOwner(w, r)
	if !ok {
		return
	}
	if err := owner.Pause(r.Context()); err != nil {
		writeBidError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResume handles POST /api/leagues/{id}/auction/resume.
func (h *IntentHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := h.resolveOwner(w, r)
	if !ok {
		return
	}
	if err := owner.Resume(r.Context()); err != nil {
		writeBidError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSkip handles POST /api/leagues/{id}/auction/skip.
func (h *IntentHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := h.resolveOwner(w, r)
	if !ok {
		return
	}
	if err := owner.Skip(r.Context()); err != nil {
		writeBidError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IntentHandler) resolveOwner(w http.ResponseWriter, r *http.Request) (uuid.UUID, *orchestrator.Owner, bool) {
	leagueID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid league id")
		return uuid.Nil, nil, false
	}
	owner, ok := h.owners.Owner(leagueID)
	if !ok {
		writeError(w, http.StatusNotFound, "no auction running for league")
		return uuid.Nil, nil, false
	}
	return leagueID, owner, true
}

// writeBidError maps session verdicts onto HTTP statuses.
func writeBidError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrBidTooLow):
		writeError(w, http.StatusConflict, "bid must exceed the current bid")
	case errors.Is(err, session.ErrExceedsBudget):
		writeError(w, http.StatusConflict, "bid exceeds remaining budget")
	case errors.Is(err, session.ErrUnknownParticipant):
		writeError(w, http.StatusForbidden, "not a participant in this league")
	case errors.Is(err, session.ErrAuctionNotActive):
		writeError(w, http.StatusConflict, "bidding window is not open")
	case errors.Is(err, orchestrator.ErrOwnerStopped):
		writeError(w, http.StatusNotFound, "no auction running for league")
	default:
		log.Error().Err(err).Msg("intent failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
