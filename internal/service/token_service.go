package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"artmarket/internal/domain"
)

// TokenService emite y valida los JWT de acceso y de refresh. Cada tipo se
// firma con un secreto distinto: comprometer uno no compromete el otro.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	UserID    string `json:"uid"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "artmarket",
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken firma un token de acceso de vida corta.
func (s *TokenService) IssueAccessToken(user domain.User) (string, error) {
	if len(s.accessSecret) == 0 {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

// IssueRefreshToken firma un refresh token y devuelve también su jti y
// expiración, para registrarlo en la lista del usuario.
func (s *TokenService) IssueRefreshToken(user domain.User) (signed, jti string, expiresAt time.Time, err error) {
	if len(s.refreshSecret) == 0 {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	now := time.Now().UTC()
	jti = uuid.NewString()
	expiresAt = now.Add(s.refreshTTL)
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString(s.refreshSecret)
	return signed, jti, expiresAt, err
}

// ParseAccessToken valida firma, expiración, issuer y tipo de un access token.
func (s *TokenService) ParseAccessToken(tokenString string) (Claims, error) {
	claims, err := s.parseToken(tokenString, s.accessSecret)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "access" || !s.validClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// ParseRefreshToken valida un refresh token contra el secreto de refresh.
func (s *TokenService) ParseRefreshToken(tokenString string) (Claims, error) {
	claims, err := s.parseToken(tokenString, s.refreshSecret)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "refresh" || claims.ID == "" || !s.validClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) parseToken(tokenString string, secret []byte) (Claims, error) {
	if len(secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) validClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return claims.Issuer == s.issuer
}
