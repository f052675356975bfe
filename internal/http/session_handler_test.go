package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/email"
	"artmarket/internal/service"
)

func sessionTestRouter(repo *stubUserRepo) (*gin.Engine, *service.TokenService) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens()
	sessions := service.NewSessionService(zap.NewNop(), repo, tokens, email.NewDisabledSender("test"), nil)
	handler := NewSessionHandler(zap.NewNop(), sessions, tokens, false)

	r := gin.New()
	users := r.Group("/api/users")
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/refresh-token", handler.RefreshToken)
	users.POST("/logout", OptionalAuth(tokens, repo), handler.Logout)
	return r, tokens
}

func seedVerifiedUser(t *testing.T, repo *stubUserRepo) domain.User {
	t.Helper()
	hash, err := service.HashPassword("Sup3rsecret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := domain.User{
		ID:              "u1",
		Username:        "alice",
		Name:            "Alice",
		Email:           "alice@example.com",
		PasswordHash:    hash,
		Role:            domain.RoleArtist,
		Active:          true,
		IsEmailVerified: true,
	}
	repo.users[user.ID] = user
	return user
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionHandlerLogin_SetsSessionCookies(t *testing.T) {
	repo := newStubUserRepo()
	seedVerifiedUser(t, repo)
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"alice","password":"Sup3rsecret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	access := cookieByName(rec, accessCookieName)
	if access == nil || access.Value == "" || access.Path != "/" {
		t.Fatalf("expected access cookie at /, got %+v", access)
	}
	if !access.HttpOnly {
		t.Fatalf("expected httpOnly access cookie")
	}

	refresh := cookieByName(rec, refreshCookieName)
	if refresh == nil || refresh.Value == "" || refresh.Path != refreshCookiePath {
		t.Fatalf("expected refresh cookie at %s, got %+v", refreshCookiePath, refresh)
	}
}

func TestSessionHandlerLogin_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedVerifiedUser(t, repo)
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"alice","password":"wrongpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionHandlerLogin_UnverifiedEmail(t *testing.T) {
	repo := newStubUserRepo()
	user := seedVerifiedUser(t, repo)
	user.IsEmailVerified = false
	repo.users[user.ID] = user
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"alice","password":"Sup3rsecret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSessionHandlerRegister_FieldErrors(t *testing.T) {
	repo := newStubUserRepo()
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"bob","name":"Bob","email":"bob@example.com","password":"short","role":"artist"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["field"] != "password" {
		t.Fatalf("expected password field error, got %v", resp)
	}
}

func TestSessionHandlerRegister_CreatesUserWithCookies(t *testing.T) {
	repo := newStubUserRepo()
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"bob","name":"Bob","email":"bob@example.com","password":"Sup3rsecret","role":"artist"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookieByName(rec, accessCookieName) == nil || cookieByName(rec, refreshCookieName) == nil {
		t.Fatalf("expected session cookies on registration")
	}
	if _, err := repo.GetByUsername(req.Context(), "bob"); err != nil {
		t.Fatalf("expected user stored, got %v", err)
	}
}

func TestSessionHandlerRefresh_RotatesSession(t *testing.T) {
	repo := newStubUserRepo()
	seedVerifiedUser(t, repo)
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"alice","password":"Sup3rsecret"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	r.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRec.Code)
	}
	refresh := cookieByName(loginRec, refreshCookieName)
	if refresh == nil {
		t.Fatalf("expected refresh cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh.Value})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rotated := cookieByName(rec, refreshCookieName)
	if rotated == nil || rotated.Value == refresh.Value {
		t.Fatalf("expected rotated refresh cookie")
	}

	// El token viejo quedó invalidado por la rotación.
	replay := httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil)
	replay.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh.Value})
	replayRec := httptest.NewRecorder()
	r.ServeHTTP(replayRec, replay)
	if replayRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for replayed refresh token, got %d", replayRec.Code)
	}
}

func TestSessionHandlerRefresh_MissingCookie(t *testing.T) {
	repo := newStubUserRepo()
	r, _ := sessionTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionHandlerLogout_ClearsCookiesAndSession(t *testing.T) {
	repo := newStubUserRepo()
	user := seedVerifiedUser(t, repo)
	r, _ := sessionTestRouter(repo)

	body := strings.NewReader(`{"username":"alice","password":"Sup3rsecret"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	r.ServeHTTP(loginRec, loginReq)

	access := cookieByName(loginRec, accessCookieName)
	refresh := cookieByName(loginRec, refreshCookieName)
	if access == nil || refresh == nil {
		t.Fatalf("expected session cookies from login")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: access.Value})
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh.Value})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cleared := cookieByName(rec, refreshCookieName)
	if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("expected refresh cookie cleared, got %+v", cleared)
	}

	stored, err := repo.GetByID(req.Context(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(stored.RefreshTokens) != 0 {
		t.Fatalf("expected refresh token removed on logout, got %d", len(stored.RefreshTokens))
	}
}
