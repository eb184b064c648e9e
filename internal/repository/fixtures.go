package repository

import (
	"context"
	"fmt"
	"time"

	"clubratings/ingestion/internal/metrics"
	"clubratings/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// FixtureRepository handles fixture fact database operations
type FixtureRepository struct {
	db *Database
}

// Upsert writes one fixture fact under a single transaction: resolve or
// create both clubs, then insert-or-update the fact keyed by
// (home_club_id, away_club_id, match_date). Any failure rolls everything
// back, clubs included, so a failed fact write cannot strand freshly
// created clubs.
func (r *FixtureRepository) Upsert(ctx context.Context, in *models.FixtureInput, source string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	home := in.HomeClubEntity()
	if err := r.db.Clubs.UpsertTx(ctx, tx, home); err != nil {
		return err
	}

	away := in.AwayClubEntity()
	if err := r.db.Clubs.UpsertTx(ctx, tx, away); err != nil {
		return err
	}

	fixture := in.ToFixture(home.ID, away.ID, source)

	query := `
		INSERT INTO fixtures (
			home_club_id, away_club_id, match_date, country, competition,
			home_level, away_level, home_elo, away_elo,
			prob_home, prob_draw, prob_away, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (home_club_id, away_club_id, match_date) DO UPDATE SET
			country = EXCLUDED.country,
			competition = EXCLUDED.competition,
			home_level = EXCLUDED.home_level,
			away_level = EXCLUDED.away_level,
			home_elo = EXCLUDED.home_elo,
			away_elo = EXCLUDED.away_elo,
			prob_home = EXCLUDED.prob_home,
			prob_draw = EXCLUDED.prob_draw,
			prob_away = EXCLUDED.prob_away,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		fixture.HomeClubID, fixture.AwayClubID, fixture.MatchDate,
		fixture.Country, fixture.Competition,
		fixture.HomeLevel, fixture.AwayLevel,
		fixture.HomeElo, fixture.AwayElo,
		fixture.ProbHome, fixture.ProbDraw, fixture.ProbAway,
		fixture.Source,
	).Scan(&fixture.ID, &fixture.CreatedAt, &fixture.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "fixtures", "error")
		return fmt.Errorf("failed to upsert fixture fact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit fixture upsert: %w", err)
	}

	metrics.RecordDBQuery("upsert", "fixtures", "success")
	log.Debug().
		Str("home", in.Home).
		Str("away", in.Away).
		Time("match_date", in.Date).
		Msg("Fixture fact upserted")

	return nil
}

// ListByDate returns fixture facts with offset pagination, ordered by match
// date then country. A zero date matches all dates; an empty country
// matches all countries.
func (r *FixtureRepository) ListByDate(ctx context.Context, date time.Time, country string, limit, offset int) ([]*models.Fixture, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM fixtures f
		WHERE ($1::date IS NULL OR f.match_date = $1)
		  AND ($2 = '' OR f.country = $2)
	`

	var dateParam interface{}
	if !date.IsZero() {
		dateParam = date
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, dateParam, country).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count fixtures: %w", err)
	}

	query := `
		SELECT f.id, f.home_club_id, f.away_club_id, f.match_date,
		       f.country, f.competition, f.home_level, f.away_level,
		       f.home_elo, f.away_elo, f.prob_home, f.prob_draw, f.prob_away,
		       f.source, f.created_at, f.updated_at,
		       h.display_name, a.display_name
		FROM fixtures f
		JOIN clubs h ON h.id = f.home_club_id
		JOIN clubs a ON a.id = f.away_club_id
		WHERE ($1::date IS NULL OR f.match_date = $1)
		  AND ($2 = '' OR f.country = $2)
		ORDER BY f.match_date, f.country, f.id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Pool.Query(ctx, query, dateParam, country, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []*models.Fixture
	for rows.Next() {
		var fixture models.Fixture
		err := rows.Scan(
			&fixture.ID, &fixture.HomeClubID, &fixture.AwayClubID, &fixture.MatchDate,
			&fixture.Country, &fixture.Competition, &fixture.HomeLevel, &fixture.AwayLevel,
			&fixture.HomeElo, &fixture.AwayElo,
			&fixture.ProbHome, &fixture.ProbDraw, &fixture.ProbAway,
			&fixture.Source, &fixture.CreatedAt, &fixture.UpdatedAt,
			&fixture.HomeClub, &fixture.AwayClub,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixtures = append(fixtures, &fixture)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating fixtures: %w", err)
	}

	return fixtures, total, nil
}

// Count returns the total number of fixture facts
func (r *FixtureRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM fixtures`

	var count int64
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fixture facts: %w", err)
	}

	return count, nil
}
