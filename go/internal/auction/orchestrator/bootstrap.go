package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
	"github.com/bracketbid/calcutta/go/internal/auction/schedule"
	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrNotStarted is returned when Bootstrap is asked to own an auction
// whose scheduled start has not passed.
var ErrNotStarted = errors.New("auction has not started")

// Bootstrap builds the owner for a league whose start has passed.
//
// The persisted snapshot, when one exists, is reconciled against the
// wall clock: the session resumes from it, and any bidding windows that
// closed while no owner was running are fast-forwarded — the snapshot's
// recorded high bidder wins the team whose window it was, and every
// window after that closes unsold. Without a snapshot the session is
// positioned wherever the schedule says the auction is.
func Bootstrap(ctx context.Context, league models.League, teams []models.TournamentTeam, members []models.Participant, snapshots store.SnapshotStore, publisher events.Publisher, recorder LeagueRecorder, clock clockwork.Clock) (*Owner, error) {
	settings := league.AuctionSettings
	if err := settings.Validate(); err != nil {
		// A bad row must not take down the supervisor; the caller logs
		// and skips this league.
		return nil, fmt.Errorf("auction settings for league %s: %w", league.ID, err)
	}
	sched := schedule.Schedule{
		StartAt:             settings.StartAt,
		SecondsPerTeam:      settings.SecondsPerTeam,
		SecondsBetweenTeams: settings.SecondsBetweenTeams,
		Teams:               teams,
	}

	now := clock.Now()
	if !sched.Started(now) {
		return nil, ErrNotStarted
	}

	snap, err := snapshots.Load(ctx, league.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Degrade to pure wall-clock derivation.
		log.Warn().Err(err).Str("league_id", league.ID.String()).Msg("snapshot load failed; starting from wall clock")
		snap = nil
	}

	var sess *session.Session
	if snap == nil {
		sess = session.New(league.ID, sched, settings, members, now)
	} else {
		sess = session.Restore(snap, sched, settings)
	}

	owner := NewOwner(sess, snapshots, publisher, recorder, clock)
	owner.announceStart = snap == nil
	owner.fastForward(ctx, now)
	return owner, nil
}

// fastForward closes every bidding window that expired while no owner
// was running. Runs before the command loop starts, so it may touch the
// session directly.
func (o *Owner) fastForward(ctx context.Context, now time.Time) {
	advanced := false
	for o.sess.Status() == session.StatusActive && !o.sess.Deadline().After(now) {
		closedAt := o.sess.Deadline()
		out := o.sess.AdvanceTeam(closedAt)
		advanced = true

		if out.Awarded != nil {
			log.Info().
				Str("league_id", o.leagueID.String()).
				Str("team", out.Team.Name).
				Float64("price", out.Awarded.Price).
				Msg("awarding team whose window closed while owner was down")
			o.emit(ctx, events.TypeTeamAwarded, events.TeamAwardedPayload{
				TeamIndex: out.TeamIndex,
				Team:      *out.Awarded,
				WinnerID:  out.WinnerID.String(),
				AwardedAt: closedAt,
			})
		} else {
			o.emit(ctx, events.TypeTeamUnsold, events.TeamUnsoldPayload{
				TeamIndex: out.TeamIndex,
				TeamID:    out.Team.ID.String(),
				TeamName:  out.Team.Name,
				ClosedAt:  closedAt,
			})
		}
	}

	if advanced {
		o.recordResults(ctx)
		o.persist(ctx)
	}
}
