package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// ArtistRepository define la persistencia de perfiles de artista.
type ArtistRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.ArtistProfile, error)
	GetByID(ctx context.Context, id string) (domain.ArtistProfile, error)
	List(ctx context.Context) ([]domain.ArtistListing, error)
	Update(ctx context.Context, profile domain.ArtistProfile) error
}

// PgArtistRepository implementa ArtistRepository usando pgxpool.
type PgArtistRepository struct {
	pool *pgxpool.Pool
}

func NewPgArtistRepository(pool *pgxpool.Pool) *PgArtistRepository {
	return &PgArtistRepository{pool: pool}
}

const artistColumns = `
	p.id, p.user_id, p.bio, p.skills, p.portfolio_items, p.experience,
	p.education, p.social_links, p.professional_info, p.preferences,
	p.verification_status,
	COALESCE((SELECT avg(r.rating) FROM reviews r WHERE r.subject_user_id = p.user_id), 0),
	p.created_at, p.updated_at
`

func scanArtist(row pgx.Row) (domain.ArtistProfile, error) {
	var p domain.ArtistProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Bio,
		&p.Skills,
		&p.PortfolioItems,
		&p.Experience,
		&p.Education,
		&p.SocialLinks,
		&p.ProfessionalInfo,
		&p.Preferences,
		&p.VerificationStatus,
		&p.AverageRating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PgArtistRepository) GetByUserID(ctx context.Context, userID string) (domain.ArtistProfile, error) {
	const query = `SELECT ` + artistColumns + ` FROM artist_profiles p WHERE p.user_id = $1`
	return scanArtist(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgArtistRepository) GetByID(ctx context.Context, id string) (domain.ArtistProfile, error) {
	const query = `SELECT ` + artistColumns + ` FROM artist_profiles p WHERE p.id = $1`
	return scanArtist(r.pool.QueryRow(ctx, query, id))
}

func (r *PgArtistRepository) List(ctx context.Context) ([]domain.ArtistListing, error) {
	const query = `
		SELECT ` + artistColumns + `, u.username, u.name, u.avatar_url, u.location
		FROM artist_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.active
		ORDER BY p.created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.ArtistListing
	for rows.Next() {
		var l domain.ArtistListing
		err := rows.Scan(
			&l.Profile.ID,
			&l.Profile.UserID,
			&l.Profile.Bio,
			&l.Profile.Skills,
			&l.Profile.PortfolioItems,
			&l.Profile.Experience,
			&l.Profile.Education,
			&l.Profile.SocialLinks,
			&l.Profile.ProfessionalInfo,
			&l.Profile.Preferences,
			&l.Profile.VerificationStatus,
			&l.Profile.AverageRating,
			&l.Profile.CreatedAt,
			&l.Profile.UpdatedAt,
			&l.Username,
			&l.Name,
			&l.Avatar,
			&l.Location,
		)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *PgArtistRepository) Update(ctx context.Context, profile domain.ArtistProfile) error {
	const query = `
		UPDATE artist_profiles
		SET bio = $2, skills = $3, portfolio_items = $4, experience = $5,
		    education = $6, social_links = $7, professional_info = $8,
		    preferences = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Bio,
		profile.Skills,
		emptyIfNilItems(profile.PortfolioItems),
		emptyIfNilExp(profile.Experience),
		emptyIfNilEdu(profile.Education),
		profile.SocialLinks,
		profile.ProfessionalInfo,
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
