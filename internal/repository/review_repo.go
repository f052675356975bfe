package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// ReviewRepository define la persistencia de reseñas.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	ListBySubject(ctx context.Context, subjectUserID string) ([]domain.Review, error)
}

// PgReviewRepository implementa ReviewRepository usando pgxpool.
type PgReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewRepository(pool *pgxpool.Pool) *PgReviewRepository {
	return &PgReviewRepository{pool: pool}
}

func (r *PgReviewRepository) Create(ctx context.Context, review domain.Review) error {
	const query = `
		INSERT INTO reviews (id, subject_user_id, author_user_id, job_id, rating, comment, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.SubjectUserID,
		review.AuthorUserID,
		review.JobID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	return err
}

func (r *PgReviewRepository) ListBySubject(ctx context.Context, subjectUserID string) ([]domain.Review, error) {
	const query = `
		SELECT id, subject_user_id, author_user_id, COALESCE(job_id, ''), rating, comment, created_at
		FROM reviews
		WHERE subject_user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, subjectUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		err := rows.Scan(
			&rv.ID,
			&rv.SubjectUserID,
			&rv.AuthorUserID,
			&rv.JobID,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
