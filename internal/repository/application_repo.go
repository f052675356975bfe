package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// ApplicationRepository define la persistencia de aplicaciones a jobs.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) error
	GetByID(ctx context.Context, id string) (domain.Application, error)
	GetDetail(ctx context.Context, id string) (domain.ApplicationDetail, error)
	ListByJob(ctx context.Context, jobID string) ([]domain.Application, error)
	ListByArtist(ctx context.Context, artistProfileID string) ([]domain.ApplicationDetail, error)
	ExistsForJobAndArtist(ctx context.Context, jobID, artistProfileID string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	StatsForArtist(ctx context.Context, artistProfileID string) (domain.ArtistStats, error)
}

// PgApplicationRepository implementa ApplicationRepository usando pgxpool.
type PgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewPgApplicationRepository(pool *pgxpool.Pool) *PgApplicationRepository {
	return &PgApplicationRepository{pool: pool}
}

const applicationColumns = `
	a.id, a.job_id, a.artist_profile_id, a.cover_letter, a.proposed_amount,
	a.status, a.created_at, a.updated_at
`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.ArtistProfileID,
		&a.CoverLetter,
		&a.ProposedAmount,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *PgApplicationRepository) Create(ctx context.Context, app domain.Application) error {
	const query = `
		INSERT INTO applications (
			id, job_id, artist_profile_id, cover_letter, proposed_amount,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.ArtistProfileID,
		app.CoverLetter,
		app.ProposedAmount,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

func (r *PgApplicationRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1`
	return scanApplication(r.pool.QueryRow(ctx, query, id))
}

// GetDetail trae la aplicación junto al job y los datos públicos del artista.
func (r *PgApplicationRepository) GetDetail(ctx context.Context, id string) (domain.ApplicationDetail, error) {
	const query = `
		SELECT ` + applicationColumns + `,
			j.id, j.requester_id, j.title, j.description, j.category, j.type,
			j.budget, j.timeline, j.status, j.visibility, j.tags, j.views,
			j.created_at, j.updated_at,
			u.id, u.username, u.name, u.avatar_url
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN artist_profiles p ON p.id = a.artist_profile_id
		JOIN users u ON u.id = p.user_id
		WHERE a.id = $1
	`
	var (
		d   domain.ApplicationDetail
		job domain.Job
		usr domain.PublicUser
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.Application.ID,
		&d.Application.JobID,
		&d.Application.ArtistProfileID,
		&d.Application.CoverLetter,
		&d.Application.ProposedAmount,
		&d.Application.Status,
		&d.Application.CreatedAt,
		&d.Application.UpdatedAt,
		&job.ID,
		&job.RequesterID,
		&job.Title,
		&job.Description,
		&job.Category,
		&job.Type,
		&job.Budget,
		&job.Timeline,
		&job.Status,
		&job.Visibility,
		&job.Tags,
		&job.Views,
		&job.CreatedAt,
		&job.UpdatedAt,
		&usr.ID,
		&usr.Username,
		&usr.Name,
		&usr.AvatarURL,
	)
	if err != nil {
		return domain.ApplicationDetail{}, err
	}
	d.Job = &job
	d.ArtistUser = &usr
	return d, nil
}

func (r *PgApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	const query = `
		SELECT ` + applicationColumns + ` FROM applications a
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *PgApplicationRepository) ListByArtist(ctx context.Context, artistProfileID string) ([]domain.ApplicationDetail, error) {
	const query = `
		SELECT ` + applicationColumns + `,
			j.id, j.requester_id, j.title, j.description, j.category, j.type,
			j.budget, j.timeline, j.status, j.visibility, j.tags, j.views,
			j.created_at, j.updated_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.artist_profile_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, artistProfileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.ApplicationDetail
	for rows.Next() {
		var (
			d   domain.ApplicationDetail
			job domain.Job
		)
		err := rows.Scan(
			&d.Application.ID,
			&d.Application.JobID,
			&d.Application.ArtistProfileID,
			&d.Application.CoverLetter,
			&d.Application.ProposedAmount,
			&d.Application.Status,
			&d.Application.CreatedAt,
			&d.Application.UpdatedAt,
			&job.ID,
			&job.RequesterID,
			&job.Title,
			&job.Description,
			&job.Category,
			&job.Type,
			&job.Budget,
			&job.Timeline,
			&job.Status,
			&job.Visibility,
			&job.Tags,
			&job.Views,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		d.Job = &job
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *PgApplicationRepository) ExistsForJobAndArtist(ctx context.Context, jobID, artistProfileID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND artist_profile_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, jobID, artistProfileID).Scan(&exists)
	return exists, err
}

func (r *PgApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// StatsForArtist calcula los agregados del dashboard de artista.
func (r *PgApplicationRepository) StatsForArtist(ctx context.Context, artistProfileID string) (domain.ArtistStats, error) {
	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE a.status = 'pending'),
			count(*) FILTER (WHERE a.status = 'accepted'),
			count(*) FILTER (WHERE a.status = 'accepted' AND j.status = 'completed')
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.artist_profile_id = $1
	`
	var stats domain.ArtistStats
	err := r.pool.QueryRow(ctx, query, artistProfileID).Scan(
		&stats.TotalApplications,
		&stats.ActiveApplications,
		&stats.AcceptedJobs,
		&stats.CompletedJobs,
	)
	return stats, err
}
