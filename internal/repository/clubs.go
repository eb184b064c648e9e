package repository

import (
	"context"
	"fmt"

	"clubratings/ingestion/internal/metrics"
	"clubratings/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ClubRepository handles club database operations
type ClubRepository struct {
	db *Database
}

// UpsertTx resolves or creates a club inside the caller's transaction and
// fills in the surrogate id. Existing clubs get display name, country and
// level overwritten (last writer wins).
func (r *ClubRepository) UpsertTx(ctx context.Context, tx pgx.Tx, club *models.Club) error {
	query := `
		INSERT INTO clubs (identity_key, display_name, country, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_key) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			country = EXCLUDED.country,
			level = EXCLUDED.level,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		club.IdentityKey, club.DisplayName, club.Country, club.Level,
	).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "clubs", "error")
		return fmt.Errorf("failed to upsert club: %w", err)
	}

	metrics.RecordDBQuery("upsert", "clubs", "success")
	log.Debug().
		Int64("id", club.ID).
		Str("identity_key", club.IdentityKey).
		Msg("Club upserted")

	return nil
}

// GetByIdentityKey retrieves a club by its identity key
func (r *ClubRepository) GetByIdentityKey(ctx context.Context, identityKey string) (*models.Club, error) {
	query := `
		SELECT id, identity_key, display_name, country, level, created_at, updated_at
		FROM clubs
		WHERE identity_key = $1
	`

	var club models.Club
	err := r.db.Pool.QueryRow(ctx, query, identityKey).Scan(
		&club.ID, &club.IdentityKey, &club.DisplayName,
		&club.Country, &club.Level,
		&club.CreatedAt, &club.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("club not found: identity_key=%s", identityKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}

	return &club, nil
}

// List retrieves clubs with offset pagination, ordered by display name
func (r *ClubRepository) List(ctx context.Context, country string, limit, offset int) ([]*models.Club, error) {
	query := `
		SELECT id, identity_key, display_name, country, level, created_at, updated_at
		FROM clubs
		WHERE ($1 = '' OR country = $1)
		ORDER BY display_name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, country, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		var club models.Club
		err := rows.Scan(
			&club.ID, &club.IdentityKey, &club.DisplayName,
			&club.Country, &club.Level,
			&club.CreatedAt, &club.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, &club)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}

	return clubs, nil
}

// Count returns the total number of clubs, optionally filtered by country
func (r *ClubRepository) Count(ctx context.Context, country string) (int, error) {
	query := `SELECT COUNT(*) FROM clubs WHERE ($1 = '' OR country = $1)`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, country).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}

	return count, nil
}
