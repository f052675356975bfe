package domain

import "time"

// Roles válidos para un usuario. El rol es inmutable después del registro.
const (
	RoleArtist    = "artist"
	RoleRequester = "requester"
)

// MaxRefreshTokens limita la lista de refresh tokens por usuario (FIFO).
const MaxRefreshTokens = 5

type User struct {
	ID                       string         `json:"id"`
	Username                 string         `json:"username"`
	Name                     string         `json:"name"`
	Email                    string         `json:"email"`
	PasswordHash             string         `json:"-"`
	Role                     string         `json:"role"`
	AvatarURL                string         `json:"avatar_url,omitempty"`
	Location                 string         `json:"location,omitempty"`
	IsEmailVerified          bool           `json:"is_email_verified"`
	EmailVerificationToken   string         `json:"-"`
	EmailVerificationExpires *time.Time     `json:"-"`
	PasswordResetToken       string         `json:"-"`
	PasswordResetExpires     *time.Time     `json:"-"`
	FailedLoginAttempts      int            `json:"-"`
	AccountLockUntil         *time.Time     `json:"-"`
	RefreshTokens            []RefreshToken `json:"-"`
	Active                   bool           `json:"active"`
	LastLogin                *time.Time     `json:"last_login,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}

// RefreshToken es una entrada de la lista acotada de sesiones del usuario.
type RefreshToken struct {
	ID         string    `json:"id"`
	ExpiresAt  time.Time `json:"expires_at"`
	Client     string    `json:"client,omitempty"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Locked indica si la cuenta está bloqueada en el instante dado. Un bloqueo
// con timestamp pasado equivale a desbloqueado; nadie lo limpia activamente.
func (u *User) Locked(now time.Time) bool {
	return u.AccountLockUntil != nil && u.AccountLockUntil.After(now)
}

// AppendRefreshToken agrega un token a la lista, expulsando el más viejo si
// la lista ya está en el tope.
func (u *User) AppendRefreshToken(rt RefreshToken) {
	u.RefreshTokens = append(u.RefreshTokens, rt)
	if len(u.RefreshTokens) > MaxRefreshTokens {
		u.RefreshTokens = u.RefreshTokens[len(u.RefreshTokens)-MaxRefreshTokens:]
	}
}

// RemoveRefreshToken quita solo la entrada con el id dado. Devuelve true si
// existía.
func (u *User) RemoveRefreshToken(id string) bool {
	for i, rt := range u.RefreshTokens {
		if rt.ID == id {
			u.RefreshTokens = append(u.RefreshTokens[:i], u.RefreshTokens[i+1:]...)
			return true
		}
	}
	return false
}

// FindRefreshToken busca una entrada por id.
func (u *User) FindRefreshToken(id string) (RefreshToken, bool) {
	for _, rt := range u.RefreshTokens {
		if rt.ID == id {
			return rt, true
		}
	}
	return RefreshToken{}, false
}
