package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type fakeLeagueSource struct {
	mu  sync.Mutex
	due []models.League
}

func (f *fakeLeagueSource) ListAuctionsDue(_ context.Context, _ time.Time) ([]models.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.League(nil), f.due...), nil
}

type fakeTeamSource struct {
	teams []models.TournamentTeam
}

func (f *fakeTeamSource) TeamSequence(_ context.Context, _ uuid.UUID, _ models.TeamOrdering, _ uuid.UUID) ([]models.TournamentTeam, error) {
	return f.teams, nil
}

type fakeNameSource struct{}

func (fakeNameSource) DisplayNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{testAlice: "Alice", testBob: "Bob"}
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		out[id] = names[id]
	}
	return out, nil
}

func TestSupervisorStartsOwnerForDueLeague(t *testing.T) {
	league, teams := testLeague(2)
	fc := clockwork.NewFakeClockAt(testStart)

	sup := NewSupervisor(
		&fakeLeagueSource{due: []models.League{league}},
		&fakeTeamSource{teams: teams},
		fakeNameSource{},
		store.NewMemoryStore(),
		&recordingPublisher{},
		&recordingRecorder{},
		fc,
		5*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx) }()

	owner := waitOwner(t, sup, league.ID)

	// The owner accepts intents routed through the supervisor lookup.
	if _, err := owner.PlaceBid(ctx, testAlice, 40); err != nil {
		t.Fatalf("PlaceBid through supervisor-started owner: %v", err)
	}

	// A wake-triggered rescan must not replace the running owner.
	sup.Wake()
	time.Sleep(10 * time.Millisecond)
	again, ok := sup.Owner(league.ID)
	if !ok || again != owner {
		t.Error("rescan replaced a running owner")
	}

	cancel()
	select {
	case <-runErr:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not shut down")
	}
}

func TestSupervisorUnknownLeague(t *testing.T) {
	fc := clockwork.NewFakeClockAt(testStart)
	sup := NewSupervisor(&fakeLeagueSource{}, &fakeTeamSource{}, fakeNameSource{},
		store.NewMemoryStore(), &recordingPublisher{}, &recordingRecorder{}, fc, 5*time.Second)

	if _, ok := sup.Owner(uuid.New()); ok {
		t.Error("lookup for a league with no running auction should miss")
	}
}

func waitOwner(t *testing.T, sup *Supervisor, leagueID uuid.UUID) *Owner {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if owner, ok := sup.Owner(leagueID); ok {
			return owner
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("supervisor never started the owner")
	return nil
}
