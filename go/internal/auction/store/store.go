// Package store is the persistence bridge for auction sessions: keyed
// snapshot blobs a restarting owner or a late-joining viewer reconciles
// against the wall clock.
//
// The blob is an optimization to preserve mid-team bid state, not a
// source of truth for position. Losing it degrades to pure wall-clock
// derivation, which is always sufficient to place the auction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no snapshot has been saved for a league.
var ErrNotFound = errors.New("no auction snapshot for league")

// SnapshotStore persists and loads session snapshots keyed by league id.
type SnapshotStore interface {
	Load(ctx context.Context, leagueID uuid.UUID) (*session.Snapshot, error)
	Save(ctx context.Context, leagueID uuid.UUID, snap *session.Snapshot) error
}

// Key returns the storage key for a league's auction state.
func Key(leagueID uuid.UUID) string {
	return fmt.Sprintf("auction_state_%s", leagueID)
}
