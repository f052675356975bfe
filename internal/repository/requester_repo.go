package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// RequesterRepository define la persistencia de perfiles de requester.
type RequesterRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.RequesterProfile, error)
	GetByID(ctx context.Context, id string) (domain.RequesterProfile, error)
	List(ctx context.Context) ([]domain.RequesterProfile, error)
	Update(ctx context.Context, profile domain.RequesterProfile) error
}

// PgRequesterRepository implementa RequesterRepository usando pgxpool.
type PgRequesterRepository struct {
	pool *pgxpool.Pool
}

func NewPgRequesterRepository(pool *pgxpool.Pool) *PgRequesterRepository {
	return &PgRequesterRepository{pool: pool}
}

const requesterColumns = `
	p.id, p.user_id, p.company, p.preferences, p.verification_status,
	COALESCE((SELECT avg(r.rating) FROM reviews r WHERE r.subject_user_id = p.user_id), 0),
	p.created_at, p.updated_at
`

func scanRequester(row pgx.Row) (domain.RequesterProfile, error) {
	var p domain.RequesterProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Company,
		&p.Preferences,
		&p.VerificationStatus,
		&p.AverageRating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PgRequesterRepository) GetByUserID(ctx context.Context, userID string) (domain.RequesterProfile, error) {
	const query = `SELECT ` + requesterColumns + ` FROM requester_profiles p WHERE p.user_id = $1`
	return scanRequester(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgRequesterRepository) GetByID(ctx context.Context, id string) (domain.RequesterProfile, error) {
	const query = `SELECT ` + requesterColumns + ` FROM requester_profiles p WHERE p.id = $1`
	return scanRequester(r.pool.QueryRow(ctx, query, id))
}

func (r *PgRequesterRepository) List(ctx context.Context) ([]domain.RequesterProfile, error) {
	const query = `SELECT ` + requesterColumns + ` FROM requester_profiles p ORDER BY p.created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.RequesterProfile
	for rows.Next() {
		p, err := scanRequester(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PgRequesterRepository) Update(ctx context.Context, profile domain.RequesterProfile) error {
	const query = `
		UPDATE requester_profiles
		SET company = $2, preferences = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Company,
		profile.Preferences,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
