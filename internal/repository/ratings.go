package repository

import (
	"context"
	"fmt"
	"time"

	"clubratings/ingestion/internal/metrics"
	"clubratings/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// RatingRepository handles rating fact database operations
type RatingRepository struct {
	db *Database
}

// Upsert writes one rating fact under a single transaction: resolve or
// create the club, then insert-or-update the fact keyed by
// (club_id, rating_date). Any failure rolls back both writes, so a failed
// fact write never leaves an orphaned club behind.
func (r *RatingRepository) Upsert(ctx context.Context, in *models.RatingInput, date time.Time, source string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	club := in.ToClub()
	if err := r.db.Clubs.UpsertTx(ctx, tx, club); err != nil {
		return err
	}

	rating := in.ToRating(club.ID, date, source)

	query := `
		INSERT INTO club_ratings (club_id, rating_date, rank, country, level, elo, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (club_id, rating_date) DO UPDATE SET
			rank = EXCLUDED.rank,
			country = EXCLUDED.country,
			level = EXCLUDED.level,
			elo = EXCLUDED.elo,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		rating.ClubID, rating.RatingDate, rating.Rank,
		rating.Country, rating.Level, rating.Elo, rating.Source,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "club_ratings", "error")
		return fmt.Errorf("failed to upsert rating fact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rating upsert: %w", err)
	}

	metrics.RecordDBQuery("upsert", "club_ratings", "success")
	log.Debug().
		Int64("club_id", rating.ClubID).
		Str("club", in.Club).
		Time("date", date).
		Float64("elo", rating.Elo).
		Msg("Rating fact upserted")

	return nil
}

// ListByDate returns the rating snapshot for one date with offset
// pagination, ordered by rank (unranked clubs last) then elo descending.
// An empty country matches all countries.
func (r *RatingRepository) ListByDate(ctx context.Context, date time.Time, country string, limit, offset int) ([]*models.Rating, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM club_ratings r
		WHERE r.rating_date = $1 AND ($2 = '' OR r.country = $2)
	`

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, date, country).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	query := `
		SELECT r.id, r.club_id, r.rating_date, r.rank, r.country, r.level,
		       r.elo, r.source, r.created_at, r.updated_at, c.display_name
		FROM club_ratings r
		JOIN clubs c ON c.id = r.club_id
		WHERE r.rating_date = $1 AND ($2 = '' OR r.country = $2)
		ORDER BY r.rank NULLS LAST, r.elo DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Pool.Query(ctx, query, date, country, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rating models.Rating
		err := rows.Scan(
			&rating.ID, &rating.ClubID, &rating.RatingDate, &rating.Rank,
			&rating.Country, &rating.Level, &rating.Elo, &rating.Source,
			&rating.CreatedAt, &rating.UpdatedAt, &rating.ClubName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating ratings: %w", err)
	}

	return ratings, total, nil
}

// ListByClub returns one club's rating history with offset pagination,
// newest first
func (r *RatingRepository) ListByClub(ctx context.Context, identityKey string, limit, offset int) ([]*models.Rating, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM club_ratings r
		JOIN clubs c ON c.id = r.club_id
		WHERE c.identity_key = $1
	`

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, identityKey).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count club ratings: %w", err)
	}

	query := `
		SELECT r.id, r.club_id, r.rating_date, r.rank, r.country, r.level,
		       r.elo, r.source, r.created_at, r.updated_at, c.display_name
		FROM club_ratings r
		JOIN clubs c ON c.id = r.club_id
		WHERE c.identity_key = $1
		ORDER BY r.rating_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, identityKey, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list club ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rating models.Rating
		err := rows.Scan(
			&rating.ID, &rating.ClubID, &rating.RatingDate, &rating.Rank,
			&rating.Country, &rating.Level, &rating.Elo, &rating.Source,
			&rating.CreatedAt, &rating.UpdatedAt, &rating.ClubName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating club ratings: %w", err)
	}

	return ratings, total, nil
}

// Count returns the total number of rating facts
func (r *RatingRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM club_ratings`

	var count int64
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rating facts: %w", err)
	}

	return count, nil
}
