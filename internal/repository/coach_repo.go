package repository

import (
	"context"

	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type CoachRepository struct {
	db DBTX
}

func NewCoachRepository(db DBTX) *CoachRepository {
	return &CoachRepository{db: db}
}

// Upsert creates or refreshes a coach identity. The ingestion pipeline only
// reads coaches; this write path belongs to the auth/registration flow.
func (r *CoachRepository) Upsert(ctx context.Context, coach *models.Coach) error {
	query := `
		INSERT INTO coaches (id, email, display_name, aliases)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			aliases = EXCLUDED.aliases,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, coach.ID, coach.Email, coach.DisplayName, coach.Aliases).
		Scan(&coach.CreatedAt, &coach.UpdatedAt)
}

func (r *CoachRepository) GetByID(ctx context.Context, id string) (*models.Coach, error) {
	query := `
		SELECT id, email, display_name, aliases, created_at, updated_at
		FROM coaches
		WHERE id = $1
	`
	var coach models.Coach
	err := r.db.QueryRow(ctx, query, id).
		Scan(&coach.ID, &coach.Email, &coach.DisplayName, &coach.Aliases, &coach.CreatedAt, &coach.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &coach, nil
}

// FindIDByAlias is the exact (case-sensitive) array-containment probe used
// by the resolver's fast path.
func (r *CoachRepository) FindIDByAlias(ctx context.Context, alias string) (string, error) {
	query := `
		SELECT id
		FROM coaches
		WHERE $1 = ANY(aliases)
		LIMIT 1
	`
	var id string
	if err := r.db.QueryRow(ctx, query, alias).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// ListPage returns a bounded page of coach records for the resolver's fuzzy
// fallback scan.
func (r *CoachRepository) ListPage(ctx context.Context, limit int) ([]models.Coach, error) {
	query := `
		SELECT id, email, display_name, aliases, created_at, updated_at
		FROM coaches
		ORDER BY id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	for rows.Next() {
		var coach models.Coach
		if err := rows.Scan(&coach.ID, &coach.Email, &coach.DisplayName, &coach.Aliases, &coach.CreatedAt, &coach.UpdatedAt); err != nil {
			return nil, err
		}
		coaches = append(coaches, coach)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}
