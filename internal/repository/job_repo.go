package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// JobRepository define la persistencia de jobs.
type JobRepository interface {
	Create(ctx context.Context, job domain.Job) error
	GetByID(ctx context.Context, id string) (domain.Job, error)
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	ListByRequester(ctx context.Context, requesterProfileID string) ([]domain.Job, error)
	Update(ctx context.Context, job domain.Job) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	StatsForRequester(ctx context.Context, requesterProfileID string) (domain.RequesterStats, error)
}

// PgJobRepository implementa JobRepository usando pgxpool.
type PgJobRepository struct {
	pool *pgxpool.Pool
}

func NewPgJobRepository(pool *pgxpool.Pool) *PgJobRepository {
	return &PgJobRepository{pool: pool}
}

const jobColumns = `
	j.id, j.requester_id, j.title, j.description, j.category, j.type,
	j.budget, j.timeline, j.status, j.visibility, j.tags, j.views,
	(SELECT count(*) FROM applications a WHERE a.job_id = j.id),
	j.created_at, j.updated_at
`

func scanJob(row pgx.Row) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID,
		&j.RequesterID,
		&j.Title,
		&j.Description,
		&j.Category,
		&j.Type,
		&j.Budget,
		&j.Timeline,
		&j.Status,
		&j.Visibility,
		&j.Tags,
		&j.Views,
		&j.ApplicationCount,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

func (r *PgJobRepository) Create(ctx context.Context, job domain.Job) error {
	const query = `
		INSERT INTO jobs (
			id, requester_id, title, description, category, type, budget,
			timeline, status, visibility, tags, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.RequesterID,
		job.Title,
		job.Description,
		job.Category,
		job.Type,
		job.Budget,
		job.Timeline,
		job.Status,
		job.Visibility,
		tags,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *PgJobRepository) GetByID(ctx context.Context, id string) (domain.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *PgJobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs j
		WHERE j.visibility = 'public'
		  AND ($1 = '' OR j.category = $1)
		  AND ($2 = '' OR j.type = $2)
		  AND ($3 = '' OR j.title ILIKE '%' || $3 || '%' OR j.description ILIKE '%' || $3 || '%')
		ORDER BY j.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, filter.Category, filter.Type, filter.Query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *PgJobRepository) ListByRequester(ctx context.Context, requesterProfileID string) ([]domain.Job, error) {
	const query = `
		SELECT ` + jobColumns + ` FROM jobs j
		WHERE j.requester_id = $1
		ORDER BY j.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, requesterProfileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func collectJobs(rows pgx.Rows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PgJobRepository) Update(ctx context.Context, job domain.Job) error {
	const query = `
		UPDATE jobs
		SET title = $2, description = $3, category = $4, type = $5, budget = $6,
		    timeline = $7, status = $8, visibility = $9, tags = $10, updated_at = $11
		WHERE id = $1
	`
	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}
	tag, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.Category,
		job.Type,
		job.Budget,
		job.Timeline,
		job.Status,
		job.Visibility,
		tags,
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

func (r *PgJobRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgJobRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE jobs SET views = views + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// StatsForRequester calcula los agregados del dashboard en una sola consulta.
func (r *PgJobRepository) StatsForRequester(ctx context.Context, requesterProfileID string) (domain.RequesterStats, error) {
	const query = `
		SELECT
			count(*) FILTER (WHERE j.status IN ('open', 'in_progress')),
			count(*) FILTER (WHERE j.status = 'completed'),
			COALESCE((
				SELECT count(*) FROM applications a
				JOIN jobs j2 ON j2.id = a.job_id
				WHERE j2.requester_id = $1
			), 0)
		FROM jobs j
		WHERE j.requester_id = $1
	`
	var stats domain.RequesterStats
	err := r.pool.QueryRow(ctx, query, requesterProfileID).Scan(
		&stats.ActiveJobs,
		&stats.CompletedJobs,
		&stats.TotalApplications,
	)
	return stats, err
}
