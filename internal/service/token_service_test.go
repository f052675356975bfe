package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"artmarket/internal/domain"
)

func testTokenService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenService_IssueParseAccess(t *testing.T) {
	svc := testTokenService()
	user := domain.User{ID: "u1", Role: domain.RoleArtist}

	signed, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if signed == "" {
		t.Fatalf("expected token")
	}

	claims, err := svc.ParseAccessToken(signed)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleArtist {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_IssueParseRefresh(t *testing.T) {
	svc := testTokenService()
	user := domain.User{ID: "u1", Role: domain.RoleRequester}

	signed, jti, expiresAt, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if jti == "" {
		t.Fatalf("expected jti")
	}
	if expiresAt.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("expected refresh expiry around 7 days, got %v", expiresAt)
	}

	claims, err := svc.ParseRefreshToken(signed)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.ID != jti || claims.UserID != "u1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_DistinctSecrets(t *testing.T) {
	svc := testTokenService()
	user := domain.User{ID: "u1"}

	access, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, _, _, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	if _, err := svc.ParseRefreshToken(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token in refresh parse, got %v", err)
	}
	if _, err := svc.ParseAccessToken(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token in access parse, got %v", err)
	}
}

func TestTokenService_ExpiredAccess(t *testing.T) {
	svc := testTokenService()
	// Firmamos a mano un token ya vencido.
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "artmarket",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-30 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-15 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_TamperedToken(t *testing.T) {
	svc := testTokenService()
	signed, err := svc.IssueAccessToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	tampered := signed[:len(signed)-4] + "xxxx"
	if _, err := svc.ParseAccessToken(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	svc := testTokenService()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}
}

func TestTokenService_RejectsEmptySecret(t *testing.T) {
	svc := NewTokenService("", "", 15*time.Minute, time.Hour)
	if _, err := svc.IssueAccessToken(domain.User{ID: "u1"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on empty secret, got %v", err)
	}
	if _, _, _, err := svc.IssueRefreshToken(domain.User{ID: "u1"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on empty refresh secret, got %v", err)
	}
}

func TestTokenService_RejectsSubjectMismatch(t *testing.T) {
	svc := testTokenService()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "artmarket",
			Subject:   "u2",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for subject mismatch, got %v", err)
	}
}
