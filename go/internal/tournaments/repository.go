// Package tournaments is the data access layer for tournaments and
// their team fields, plus the deterministic auction ordering applied on
// top.
package tournaments

import (
	"context"
	"errors"
	"fmt"

	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a tournament does not exist.
var ErrNotFound = errors.New("tournament not found")

// DBTX defines what the repository needs from the database layer.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements tournament data access operations.
type Repository struct {
	db DBTX
}

// NewRepository creates a new tournaments repository.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// GetTournament retrieves a tournament by ID.
func (r *Repository) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.QueryRow(ctx,
		`SELECT id, name, season, starts_at, created_at FROM tournaments WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Season, &t.StartsAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	return &t, nil
}

// ListTeams returns a tournament's teams in stored order.
func (r *Repository) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentTeam, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, seed, region
		FROM tournament_teams
		WHERE tournament_id = $1
		ORDER BY seed, region`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tournament teams: %w", err)
	}
	defer rows.Close()

	var teams []models.TournamentTeam
	for rows.Next() {
		var team models.TournamentTeam
		if err := rows.Scan(&team.ID, &team.Name, &team.Seed, &team.Region); err != nil {
			return nil, fmt.Errorf("scan tournament team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// TeamSequence returns the auction order of a tournament's teams for
// one league. The supervisor calls this when bootstrapping an owner.
func (r *Repository) TeamSequence(ctx context.Context, tournamentID uuid.UUID, ordering models.TeamOrdering, orderingSeed uuid.UUID) ([]models.TournamentTeam, error) {
	teams, err := r.ListTeams(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return OrderTeams(teams, ordering, orderingSeed), nil
}
