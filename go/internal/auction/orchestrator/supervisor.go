package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// LeagueSource lists leagues whose auctions should be running.
type LeagueSource interface {
	ListAuctionsDue(ctx context.Context, now time.Time) ([]models.League, error)
}

// TeamSource provides a tournament's team sequence with the league's
// ordering policy already applied.
type TeamSource interface {
	TeamSequence(ctx context.Context, tournamentID uuid.UUID, ordering models.TeamOrdering, orderingSeed uuid.UUID) ([]models.TournamentTeam, error)
}

// NameSource resolves participant display names from the user directory.
type NameSource interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Supervisor starts one owner per due league and keeps them running.
// An auction therefore advances on schedule even when every viewer has
// disconnected; nothing about progress depends on a client being open.
type Supervisor struct {
	leagues   LeagueSource
	teams     TeamSource
	names     NameSource
	snapshots store.SnapshotStore
	publisher events.Publisher
	recorder  LeagueRecorder
	clock     clockwork.Clock

	pollInterval time.Duration
	wakeCh       chan struct{}

	mu     sync.RWMutex
	owners map[uuid.UUID]*Owner
}

// NewSupervisor wires a supervisor; pollInterval bounds how stale the
// due-league scan can get between wakes.
func NewSupervisor(leagues LeagueSource, teams TeamSource, names NameSource, snapshots store.SnapshotStore, publisher events.Publisher, recorder LeagueRecorder, clock clockwork.Clock, pollInterval time.Duration) *Supervisor {
	return &Supervisor{
		leagues:      leagues,
		teams:        teams,
		names:        names,
		snapshots:    snapshots,
		publisher:    publisher,
		recorder:     recorder,
		clock:        clock,
		pollInterval: pollInterval,
		wakeCh:       make(chan struct{}, 1),
		owners:       make(map[uuid.UUID]*Owner),
	}
}

// Owner returns the running owner for a league, if any. The gateway
// routes bid and operator intents through this.
func (s *Supervisor) Owner(leagueID uuid.UUID) (*Owner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[leagueID]
	return o, ok
}

// Wake triggers an immediate due-league scan, e.g. after a league's
// start time is edited.
func (s *Supervisor) Wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run scans for due auctions until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	log.Info().Dur("poll_interval", s.pollInterval).Msg("auction supervisor started")

	var wg sync.WaitGroup
	defer wg.Wait()

	timer := s.clock.NewTimer(0)
	defer timer.Stop()

	for {
		s.scan(ctx, &wg)

		stopAndDrainTimer(timer)
		timer.Reset(s.pollInterval)
		select {
		case <-ctx.Done():
			log.Info().Msg("auction supervisor shutting down")
			return ctx.Err()
		case <-s.wakeCh:
		case <-timer.Chan():
		}
	}
}

// scan starts owners for due leagues that do not have one yet.
func (s *Supervisor) scan(ctx context.Context, wg *sync.WaitGroup) {
	due, err := s.leagues.ListAuctionsDue(ctx, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to list due auctions")
		return
	}

	for _, league := range due {
		s.mu.RLock()
		_, running := s.owners[league.ID]
		s.mu.RUnlock()
		if running {
			continue
		}

		owner, err := s.startOwner(ctx, league)
		if err != nil {
			log.Error().Err(err).Str("league_id", league.ID.String()).Msg("failed to start auction owner")
			continue
		}

		s.mu.Lock()
		s.owners[league.ID] = owner
		s.mu.Unlock()

		wg.Add(1)
		go func(o *Owner) {
			defer wg.Done()
			if err := o.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("league_id", o.LeagueID().String()).Msg("auction owner exited with error")
			}
			s.mu.Lock()
			delete(s.owners, o.LeagueID())
			s.mu.Unlock()
		}(owner)

		log.Info().
			Str("league_id", league.ID.String()).
			Str("league", league.Name).
			Msg("auction owner started")
	}
}

// startOwner gathers the league's collaborator data and bootstraps an
// owner from snapshot plus wall clock.
func (s *Supervisor) startOwner(ctx context.Context, league models.League) (*Owner, error) {
	teams, err := s.teams.TeamSequence(ctx, league.TournamentID, league.AuctionSettings.TeamOrdering, league.ID)
	if err != nil {
		return nil, err
	}

	names, err := s.names.DisplayNames(ctx, league.MemberIDs)
	if err != nil {
		return nil, err
	}
	members := make([]models.Participant, 0, len(league.MemberIDs))
	for _, id := range league.MemberIDs {
		members = append(members, models.Participant{ID: id, DisplayName: names[id]})
	}

	owner, err := Bootstrap(ctx, league, teams, members, s.snapshots, s.publisher, s.recorder, s.clock)
	if err != nil {
		return nil, err
	}

	if league.Status == models.LeagueStatusUpcoming {
		if err := s.recorder.UpdateStatus(ctx, league.ID, models.LeagueStatusActive); err != nil {
			log.Error().Err(err).Str("league_id", league.ID.String()).Msg("failed to mark league active")
		}
	}
	return owner, nil
}
