package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios y su
// perfil asociado.
type UserRepository interface {
	CreateWithProfile(ctx context.Context, user domain.User, artist *domain.ArtistProfile, requester *domain.RequesterProfile) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	TakenField(ctx context.Context, username, email string) (string, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdateLockout(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
	SaveRefreshTokens(ctx context.Context, id string, tokens []domain.RefreshToken) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
	SetVerificationToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, username, name, email, password_hash, role, avatar_url, location,
	is_email_verified, email_verification_token, email_verification_expires,
	failed_login_attempts, account_lock_until, refresh_tokens, active,
	last_login, created_at, updated_at
`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.AvatarURL,
		&u.Location,
		&u.IsEmailVerified,
		&u.EmailVerificationToken,
		&u.EmailVerificationExpires,
		&u.FailedLoginAttempts,
		&u.AccountLockUntil,
		&u.RefreshTokens,
		&u.Active,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// CreateWithProfile inserta el usuario y su perfil de rol dentro de una
// transacción: si el perfil falla, el usuario no queda huérfano.
func (r *PgUserRepository) CreateWithProfile(ctx context.Context, user domain.User, artist *domain.ArtistProfile, requester *domain.RequesterProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (
			id, username, name, email, password_hash, role, avatar_url, location,
			is_email_verified, email_verification_token, email_verification_expires,
			refresh_tokens, active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	tokens := user.RefreshTokens
	if tokens == nil {
		tokens = []domain.RefreshToken{}
	}
	_, err = tx.Exec(ctx, insertUser,
		user.ID,
		user.Username,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.AvatarURL,
		user.Location,
		user.IsEmailVerified,
		user.EmailVerificationToken,
		user.EmailVerificationExpires,
		tokens,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	switch {
	case artist != nil:
		const insertArtist = `
			INSERT INTO artist_profiles (
				id, user_id, bio, skills, portfolio_items, experience, education,
				social_links, professional_info, preferences, verification_status,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err = tx.Exec(ctx, insertArtist,
			artist.ID,
			artist.UserID,
			artist.Bio,
			artist.Skills,
			emptyIfNilItems(artist.PortfolioItems),
			emptyIfNilExp(artist.Experience),
			emptyIfNilEdu(artist.Education),
			artist.SocialLinks,
			artist.ProfessionalInfo,
			artist.Preferences,
			artist.VerificationStatus,
			artist.CreatedAt,
			artist.UpdatedAt,
		)
	case requester != nil:
		const insertRequester = `
			INSERT INTO requester_profiles (
				id, user_id, company, preferences, verification_status,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.Exec(ctx, insertRequester,
			requester.ID,
			requester.UserID,
			requester.Company,
			requester.Preferences,
			requester.VerificationStatus,
			requester.CreatedAt,
			requester.UpdatedAt,
		)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// TakenField devuelve "username" o "email" si alguno ya existe sin importar
// mayúsculas, o cadena vacía si ambos están libres.
func (r *PgUserRepository) TakenField(ctx context.Context, username, email string) (string, error) {
	const query = `
		SELECT username, email FROM users
		WHERE lower(username) = lower($1) OR lower(email) = lower($2)
		LIMIT 1
	`
	var existingUsername, existingEmail string
	err := r.pool.QueryRow(ctx, query, username, email).Scan(&existingUsername, &existingEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if strings.EqualFold(existingUsername, username) {
		return "username", nil
	}
	return "email", nil
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, avatar_url = $4, location = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.AvatarURL,
		user.Location,
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

func (r *PgUserRepository) UpdateLockout(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	const query = `
		UPDATE users SET failed_login_attempts = $2, account_lock_until = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, attempts, lockUntil, time.Now().UTC())
	return err
}

func (r *PgUserRepository) SaveRefreshTokens(ctx context.Context, id string, tokens []domain.RefreshToken) error {
	if tokens == nil {
		tokens = []domain.RefreshToken{}
	}
	const query = `UPDATE users SET refresh_tokens = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, tokens, time.Now().UTC())
	return err
}

func (r *PgUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgUserRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	const query = `
		UPDATE users SET email_verification_token = $2, email_verification_expires = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, tokenHash, expires, time.Now().UTC())
	return err
}

func (r *PgUserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET is_email_verified = TRUE, email_verification_token = '',
		    email_verification_expires = NULL, updated_at = $2
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	return err
}

// Delete elimina el usuario; los perfiles cuelgan con ON DELETE CASCADE.
func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func emptyIfNilItems(items []domain.PortfolioItem) []domain.PortfolioItem {
	if items == nil {
		return []domain.PortfolioItem{}
	}
	return items
}

func emptyIfNilExp(items []domain.Experience) []domain.Experience {
	if items == nil {
		return []domain.Experience{}
	}
	return items
}

func emptyIfNilEdu(items []domain.Education) []domain.Education {
	if items == nil {
		return []domain.Education{}
	}
	return items
}
