// Package orchestrator runs auctions. Each league gets exactly one
// session owner: an actor that holds the session, arms the phase
// timers, applies bids, and awards teams when the clock says the window
// closed — whether or not any viewer is attached. Clients never mutate
// shared state; they send intents here and watch the event stream.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrOwnerStopped is returned for commands sent to an owner whose run
// loop has exited.
var ErrOwnerStopped = errors.New("auction owner is not running")

// LeagueRecorder folds auction outcomes into the permanent league
// record so standings and payout views see them.
type LeagueRecorder interface {
	SaveAuctionResults(ctx context.Context, leagueID uuid.UUID, results map[uuid.UUID][]models.AwardedTeam, participants map[uuid.UUID]models.Participant) error
	UpdateStatus(ctx context.Context, leagueID uuid.UUID, status models.LeagueStatus) error
}

type command struct {
	run   func(now time.Time) (any, error)
	reply chan cmdResult
}

type cmdResult struct {
	value any
	err   error
}

// Owner is the single logical writer for one league's auction.
type Owner struct {
	leagueID  uuid.UUID
	sess      *session.Session
	snapshots store.SnapshotStore
	publisher events.Publisher
	recorder  LeagueRecorder
	clock     clockwork.Clock

	cmdCh  chan command
	doneCh chan struct{}

	// announceStart is cleared by Bootstrap when resuming from a
	// snapshot, so a restarted owner does not re-announce the auction.
	announceStart bool
}

// NewOwner wraps an already-positioned session. Use Bootstrap to build
// the session from the persisted snapshot and the wall clock.
func NewOwner(sess *session.Session, snapshots store.SnapshotStore, publisher events.Publisher, recorder LeagueRecorder, clock clockwork.Clock) *Owner {
	return &Owner{
		leagueID:  sess.LeagueID(),
		sess:      sess,
		snapshots: snapshots,
		publisher: publisher,
		recorder:  recorder,
		clock:     clock,
		cmdCh:     make(chan command),
		doneCh:    make(chan struct{}),

		announceStart: true,
	}
}

// LeagueID returns the league this owner runs.
func (o *Owner) LeagueID() uuid.UUID { return o.leagueID }

// Run drives the auction until it completes or ctx is cancelled. It
// owns every mutation of the session; commands are serialized through
// the loop, so the session needs no locks.
func (o *Owner) Run(ctx context.Context) error {
	defer close(o.doneCh)

	if o.announceStart {
		o.emit(ctx, events.TypeAuctionStarted, events.AuctionStartedPayload{
			LeagueID:   o.leagueID.String(),
			StartedAt:  o.clock.Now(),
			TotalTeams: o.sess.TotalTeams(),
		})
	}
	o.persist(ctx)

	timer := o.clock.NewTimer(time.Hour)
	stopAndDrainTimer(timer)
	defer timer.Stop()

	for {
		if o.sess.Status() == session.StatusCompleted {
			o.finish(ctx)
			return nil
		}

		var timerCh <-chan time.Time
		if fireAt, ok := o.nextFire(); ok {
			stopAndDrainTimer(timer)
			timer.Reset(fireAt.Sub(o.clock.Now()))
			timerCh = timer.Chan()
		}

		select {
		case <-ctx.Done():
			o.persist(context.WithoutCancel(ctx))
			log.Info().Str("league_id", o.leagueID.String()).Msg("auction owner shutting down")
			return ctx.Err()

		case cmd := <-o.cmdCh:
			value, err := cmd.run(o.clock.Now())
			cmd.reply <- cmdResult{value: value, err: err}

		case <-timerCh:
			o.onDeadline(ctx)
		}
	}
}

// nextFire returns the next instant the clock matters: the window open
// during a buffer, the window close otherwise. Paused auctions idle.
func (o *Owner) nextFire() (time.Time, bool) {
	if o.sess.Status() != session.StatusActive {
		return time.Time{}, false
	}
	now := o.clock.Now()
	if o.sess.InBuffer(now) {
		return o.sess.WindowOpensAt(), true
	}
	return o.sess.Deadline(), true
}

// onDeadline fires when the armed boundary passes. A buffer boundary
// only re-arms; a window close awards and advances.
func (o *Owner) onDeadline(ctx context.Context) {
	now := o.clock.Now()
	if o.sess.InBuffer(now) || now.Before(o.sess.Deadline()) {
		return
	}
	o.advanceNow(ctx)
}

// finish publishes completion and folds results into the league record.
func (o *Owner) finish(ctx context.Context) {
	now := o.clock.Now()
	snap := o.sess.Snapshot(now)

	sold := 0
	for _, teams := range snap.AwardedTeams {
		sold += len(teams)
	}
	o.emit(ctx, events.TypeAuctionCompleted, events.AuctionCompletedPayload{
		CompletedAt: now,
		TeamsSold:   sold,
		TeamsUnsold: len(snap.UnsoldTeamIDs),
	})
	o.recordResults(ctx)
	if err := o.recorder.UpdateStatus(ctx, o.leagueID, models.LeagueStatusCompleted); err != nil {
		log.Error().Err(err).Str("league_id", o.leagueID.String()).Msg("failed to mark league completed")
	}
	o.persist(ctx)
	log.Info().Str("league_id", o.leagueID.String()).Msg("auction completed")
}

// PlaceBid submits a bid intent and waits for the owner's verdict.
func (o *Owner) PlaceBid(ctx context.Context, participantID uuid.UUID, amount float64) (session.BidRecord, error) {
	value, err := o.do(ctx, func(now time.Time) (any, error) {
		rec, err := o.sess.PlaceBid(participantID, amount, now)
		if err != nil {
			o.emit(ctx, events.TypeBidRejected, events.BidRejectedPayload{
				TeamIndex:  o.sess.CurrentTeamIndex(),
				BidderID:   participantID.String(),
				Amount:     amount,
				Reason:     err.Error(),
				RejectedAt: now,
			})
			return nil, err
		}
		bidderName := ""
		if p, ok := o.sess.Participant(participantID); ok {
			bidderName = p.DisplayName
		}
		o.emit(ctx, events.TypeBidPlaced, events.BidPlacedPayload{
			TeamIndex:  o.sess.CurrentTeamIndex(),
			TeamID:     o.sess.CurrentTeam().ID.String(),
			BidderID:   participantID.String(),
			BidderName: bidderName,
			Amount:     amount,
			DeadlineAt: o.sess.Deadline(),
			PlacedAt:   now,
		})
		o.persist(ctx)
		return rec, nil
	})
	if err != nil {
		return session.BidRecord{}, err
	}
	return value.(session.BidRecord), nil
}

// Pause freezes the auction clock. Commissioner-gated by the caller.
func (o *Owner) Pause(ctx context.Context) error {
	_, err := o.do(ctx, func(now time.Time) (any, error) {
		if !o.sess.Pause(now) {
			return nil, session.ErrAuctionNotActive
		}
		o.emit(ctx, events.TypeAuctionPaused, events.AuctionPausedPayload{
			PausedAt:         now,
			SecondsRemaining: o.sess.SecondsRemaining(now),
		})
		o.persist(ctx)
		return nil, nil
	})
	return err
}

// Resume unfreezes the auction clock.
func (o *Owner) Resume(ctx context.Context) error {
	_, err := o.do(ctx, func(now time.Time) (any, error) {
		if !o.sess.Resume(now) {
			return nil, session.ErrAuctionNotActive
		}
		o.emit(ctx, events.TypeAuctionResumed, events.AuctionResumedPayload{
			ResumedAt:  now,
			DeadlineAt: o.sess.Deadline(),
		})
		o.persist(ctx)
		return nil, nil
	})
	return err
}

// Skip force-closes the current team's window immediately, awarding to
// the standing high bidder if there is one.
func (o *Owner) Skip(ctx context.Context) error {
	_, err := o.do(ctx, func(now time.Time) (any, error) {
		if o.sess.Status() != session.StatusActive {
			return nil, session.ErrAuctionNotActive
		}
		o.advanceNow(ctx)
		return nil, nil
	})
	return err
}

// advanceNow closes the current team's window: award or unsold, then
// the buffer announcement for the next team. Shared by the deadline
// path and Skip.
func (o *Owner) advanceNow(ctx context.Context) {
	now := o.clock.Now()
	out := o.sess.AdvanceTeam(now)
	if out.Awarded != nil {
		winnerName := ""
		if p, ok := o.sess.Participant(out.WinnerID); ok {
			winnerName = p.DisplayName
		}
		log.Info().
			Str("league_id", o.leagueID.String()).
			Str("team", out.Team.Name).
			Str("winner_id", out.WinnerID.String()).
			Float64("price", out.Awarded.Price).
			Msg("team awarded")
		o.emit(ctx, events.TypeTeamAwarded, events.TeamAwardedPayload{
			TeamIndex:  out.TeamIndex,
			Team:       *out.Awarded,
			WinnerID:   out.WinnerID.String(),
			WinnerName: winnerName,
			AwardedAt:  now,
		})
		o.recordResults(ctx)
	} else {
		log.Info().
			Str("league_id", o.leagueID.String()).
			Str("team", out.Team.Name).
			Msg("team unsold")
		o.emit(ctx, events.TypeTeamUnsold, events.TeamUnsoldPayload{
			TeamIndex: out.TeamIndex,
			TeamID:    out.Team.ID.String(),
			TeamName:  out.Team.Name,
			ClosedAt:  now,
		})
	}

	if !out.Completed {
		next := o.sess.CurrentTeam()
		o.emit(ctx, events.TypeBufferStarted, events.BufferStartedPayload{
			NextTeamIndex: o.sess.CurrentTeamIndex(),
			NextTeamID:    next.ID.String(),
			NextTeamName:  next.Name,
			OpensAt:       o.sess.WindowOpensAt(),
			DeadlineAt:    o.sess.Deadline(),
		})
	}
	o.persist(ctx)
}

// State returns a read-only snapshot of the session as of now.
func (o *Owner) State(ctx context.Context) (*session.Snapshot, error) {
	value, err := o.do(ctx, func(now time.Time) (any, error) {
		return o.sess.Snapshot(now), nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*session.Snapshot), nil
}

// do runs fn inside the owner's command loop.
func (o *Owner) do(ctx context.Context, fn func(now time.Time) (any, error)) (any, error) {
	cmd := command{run: fn, reply: make(chan cmdResult, 1)}
	select {
	case o.cmdCh <- cmd:
	case <-o.doneCh:
		return nil, ErrOwnerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// persist saves a snapshot; failures degrade to wall-clock derivation
// and are only logged.
func (o *Owner) persist(ctx context.Context) {
	snap := o.sess.Snapshot(o.clock.Now())
	if err := o.snapshots.Save(ctx, o.leagueID, snap); err != nil {
		log.Error().Err(err).Str("league_id", o.leagueID.String()).Msg("failed to save auction snapshot")
	}
}

// recordResults mirrors the awarded-teams map and participant ledger
// into the league record.
func (o *Owner) recordResults(ctx context.Context) {
	snap := o.sess.Snapshot(o.clock.Now())
	participants := make(map[uuid.UUID]models.Participant, len(snap.Participants))
	for id, p := range snap.Participants {
		participants[id] = p
	}
	if err := o.recorder.SaveAuctionResults(ctx, o.leagueID, snap.AwardedTeams, participants); err != nil {
		log.Error().Err(err).Str("league_id", o.leagueID.String()).Msg("failed to record auction results")
	}
}

func (o *Owner) emit(ctx context.Context, eventType string, payload any) {
	env, err := events.NewEnvelope(eventType, o.leagueID, o.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to build event envelope")
		return
	}
	if err := o.publisher.Publish(ctx, env); err != nil {
		log.Error().Err(err).
			Str("event_type", eventType).
			Str("league_id", o.leagueID.String()).
			Msg("failed to publish auction event")
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel so a
// stale fire is never consumed by the next arm.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
