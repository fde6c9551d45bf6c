package gateway

import (
	"errors"
	"net/http"

	"github.com/bracketbid/calcutta/go/internal/auction/orchestrator"
	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StateHandler serves the auction state a client renders from on page
// load or reconnect. A live owner answers authoritatively; for an
// auction with no running owner (typically completed) the persisted
// snapshot is served as-is.
type StateHandler struct {
	owners    OwnerRegistry
	snapshots store.SnapshotStore
}

// NewStateHandler creates a state handler.
func NewStateHandler(owners OwnerRegistry, snapshots store.SnapshotStore) *StateHandler {
	return &StateHandler{owners: owners, snapshots: snapshots}
}

// HandleGetState handles GET /api/leagues/{id}/auction/state.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid league id")
		return
	}

	if owner, ok := h.owners.Owner(leagueID); ok {
		snap, err := owner.State(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, snap)
			return
		case errors.Is(err, orchestrator.ErrOwnerStopped):
			// Owner exited between lookup and command; fall through to
			// the snapshot store.
		default:
			log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to get live auction state")
			writeError(w, http.StatusInternalServerError, "failed to get auction state")
			return
		}
	}

	snap, err := h.snapshots.Load(r.Context(), leagueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no auction state for league")
			return
		}
		log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to load auction snapshot")
		writeError(w, http.StatusInternalServerError, "failed to get auction state")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
