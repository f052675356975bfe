package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"artmarket/internal/domain"
	"artmarket/internal/service"
)

type stubUserRepo struct {
	users map[string]domain.User
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) CreateWithProfile(_ context.Context, user domain.User, _ *domain.ArtistProfile, _ *domain.RequesterProfile) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) TakenField(_ context.Context, _, _ string) (string, error) { return "", nil }

func (s *stubUserRepo) List(_ context.Context) ([]domain.User, error) { return nil, nil }

func (s *stubUserRepo) Update(_ context.Context, user domain.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) UpdateLockout(_ context.Context, _ string, _ int, _ *time.Time) error {
	return nil
}

func (s *stubUserRepo) SaveRefreshTokens(_ context.Context, id string, tokens []domain.RefreshToken) error {
	user, ok := s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshTokens = tokens
	s.users[id] = user
	return nil
}

func (s *stubUserRepo) RecordLogin(_ context.Context, _ string, _ time.Time) error { return nil }

func (s *stubUserRepo) SetVerificationToken(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (s *stubUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	user, ok := s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsEmailVerified = true
	s.users[id] = user
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, id string) error {
	delete(s.users, id)
	return nil
}

func testTokens() *service.TokenService {
	return service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func activeUser(id, role string) domain.User {
	return domain.User{
		ID:              id,
		Username:        id,
		Role:            role,
		Active:          true,
		IsEmailVerified: true,
	}
}

func protectedRouter(tokens *service.TokenService, repo *stubUserRepo, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth(tokens, repo)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestRequireAuth_AllowsValidCookie(t *testing.T) {
	tokens := testTokens()
	user := activeUser("u1", domain.RoleArtist)
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := protectedRouter(tokens, repo)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth_AllowsBearerHeader(t *testing.T) {
	tokens := testTokens()
	user := activeUser("u1", domain.RoleArtist)
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := protectedRouter(tokens, repo)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	r := protectedRouter(testTokens(), newStubUserRepo())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_ExpiredTokenHasCode(t *testing.T) {
	tokens := testTokens()
	repo := newStubUserRepo(activeUser("u1", domain.RoleArtist))

	now := time.Now().UTC()
	claims := service.Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "artmarket",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := protectedRouter(tokens, repo)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: signed})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "token_expired" {
		t.Fatalf("expected token_expired code, got %v", body)
	}
}

func TestRequireAuth_RejectsDeactivatedUser(t *testing.T) {
	tokens := testTokens()
	user := activeUser("u1", domain.RoleArtist)
	user.Active = false
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := protectedRouter(tokens, repo)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_RejectsWrongRole(t *testing.T) {
	tokens := testTokens()
	user := activeUser("u1", domain.RoleArtist)
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := protectedRouter(tokens, repo, RequireRole(domain.RoleRequester))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	tokens := testTokens()
	user := activeUser("u1", domain.RoleRequester)
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := protectedRouter(tokens, repo, RequireRole(domain.RoleRequester))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens()
	repo := newStubUserRepo()

	r := gin.New()
	r.GET("/open", OptionalAuth(tokens, repo), func(c *gin.Context) {
		_, ok := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["authenticated"] {
		t.Fatalf("expected anonymous request")
	}
}

func TestOptionalAuth_AttachesValidUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens()
	user := activeUser("u1", domain.RoleArtist)
	repo := newStubUserRepo(user)

	access, err := tokens.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	r := gin.New()
	r.GET("/open", OptionalAuth(tokens, repo), func(c *gin.Context) {
		attached, ok := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok && attached.ID == "u1"})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["authenticated"] {
		t.Fatalf("expected user attached")
	}
}
