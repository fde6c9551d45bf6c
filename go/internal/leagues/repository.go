// Package leagues is the data access layer for calcutta leagues and
// their recorded auction outcomes.
package leagues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a league does not exist.
var ErrNotFound = errors.New("league not found")

// DBTX defines what the repository needs from the database layer. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements league data access operations.
type Repository struct {
	db DBTX
}

// NewRepository creates a new leagues repository.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const leagueColumns = `id, name, tournament_id, commissioner_id, member_ids, status, auction_settings, season, created_at, updated_at`

// CreateLeague creates a new league in UPCOMING status.
func (r *Repository) CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error) {
	if err := req.AuctionSettings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auction settings: %w", err)
	}
	settingsJSON, err := json.Marshal(req.AuctionSettings)
	if err != nil {
		return nil, fmt.Errorf("marshal auction settings: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO leagues (id, name, tournament_id, commissioner_id, member_ids, status, auction_settings, season)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leagueColumns,
		uuid.New(), req.Name, req.TournamentID, req.CommissionerID, req.MemberIDs,
		models.LeagueStatusUpcoming, settingsJSON, req.Season,
	)
	league, err := scanLeague(row)
	if err != nil {
		return nil, fmt.Errorf("create league: %w", err)
	}
	return league, nil
}

// GetLeague retrieves a league by ID.
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = $1`, id)
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	return league, nil
}

// ListAuctionsDue returns leagues whose auction start has passed and
// whose auction has not finished. The supervisor polls this.
func (r *Repository) ListAuctionsDue(ctx context.Context, now time.Time) ([]models.League, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+leagueColumns+`
		FROM leagues
		WHERE status != $1
		  AND (auction_settings->>'start_at')::timestamptz <= $2
		ORDER BY (auction_settings->>'start_at')::timestamptz`,
		models.LeagueStatusCompleted, now,
	)
	if err != nil {
		return nil, fmt.Errorf("list due auctions: %w", err)
	}
	defer rows.Close()

	var leagues []models.League
	for rows.Next() {
		league, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due auction: %w", err)
		}
		leagues = append(leagues, *league)
	}
	return leagues, rows.Err()
}

// UpdateStatus moves a league through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeagueStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE leagues SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update league status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAuctionSettings replaces a league's auction settings. Rejected
// once the auction is underway.
func (r *Repository) UpdateAuctionSettings(ctx context.Context, id uuid.UUID, req UpdateAuctionSettingsRequest) (*models.League, error) {
	if err := req.AuctionSettings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auction settings: %w", err)
	}
	settingsJSON, err := json.Marshal(req.AuctionSettings)
	if err != nil {
		return nil, fmt.Errorf("marshal auction settings: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE leagues SET auction_settings = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+leagueColumns,
		id, settingsJSON, models.LeagueStatusUpcoming,
	)
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update auction settings: %w", err)
	}
	return league, nil
}

// AddMember appends a user to the league's member list if not present.
func (r *Repository) AddMember(ctx context.Context, leagueID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE leagues SET member_ids = array_append(member_ids, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(member_ids))`,
		leagueID, userID,
	)
	if err != nil {
		return fmt.Errorf("add league member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the league is missing or the user is already a member;
		// distinguish for the caller.
		if _, err := r.GetLeague(ctx, leagueID); err != nil {
			return err
		}
	}
	return nil
}

// SaveAuctionResults upserts the awarded-teams map and participant
// ledger for a league. Written after every award so a crash mid-auction
// loses at most the window in flight.
func (r *Repository) SaveAuctionResults(ctx context.Context, leagueID uuid.UUID, results map[uuid.UUID][]models.AwardedTeam, participants map[uuid.UUID]models.Participant) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal auction results: %w", err)
	}
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO auction_results (league_id, results, participants, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (league_id)
		DO UPDATE SET results = EXCLUDED.results, participants = EXCLUDED.participants, updated_at = now()`,
		leagueID, resultsJSON, participantsJSON,
	)
	if err != nil {
		return fmt.Errorf("save auction results: %w", err)
	}
	return nil
}

// GetAuctionResults loads the recorded outcome for a league.
func (r *Repository) GetAuctionResults(ctx context.Context, leagueID uuid.UUID) (map[uuid.UUID][]models.AwardedTeam, map[uuid.UUID]models.Participant, error) {
	var resultsJSON, participantsJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT results, participants FROM auction_results WHERE league_id = $1`, leagueID,
	).Scan(&resultsJSON, &participantsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get auction results: %w", err)
	}

	var results map[uuid.UUID][]models.AwardedTeam
	if err := json.Unmarshal(resultsJSON, &results); err != nil {
		return nil, nil, fmt.Errorf("decode auction results: %w", err)
	}
	var participants map[uuid.UUID]models.Participant
	if err := json.Unmarshal(participantsJSON, &participants); err != nil {
		return nil, nil, fmt.Errorf("decode participants: %w", err)
	}
	return results, participants, nil
}

func scanLeague(row pgx.Row) (*models.League, error) {
	var league models.League
	var settingsJSON []byte
	err := row.Scan(
		&league.ID, &league.Name, &league.TournamentID, &league.CommissionerID,
		&league.MemberIDs, &league.Status, &settingsJSON, &league.Season,
		&league.CreatedAt, &league.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settingsJSON, &league.AuctionSettings); err != nil {
		return nil, fmt.Errorf("decode auction settings: %w", err)
	}
	return &league, nil
}
