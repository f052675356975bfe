package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/service"
)

// SessionHandler mantiene dependencias para los endpoints de sesión.
type SessionHandler struct {
	logger       *zap.Logger
	sessions     *service.SessionService
	tokens       *service.TokenService
	cookieSecure bool
}

func NewSessionHandler(logger *zap.Logger, sessions *service.SessionService, tokens *service.TokenService, cookieSecure bool) *SessionHandler {
	return &SessionHandler{
		logger:       logger,
		sessions:     sessions,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

type skillInput struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Register maneja POST /api/users/register.
func (h *SessionHandler) Register(c *gin.Context) {
	var req struct {
		Username string         `json:"username"`
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Role     string         `json:"role"`
		Skills   []skillInput   `json:"skills"`
		Company  domain.Company `json:"company"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	skills := make([]domain.Skill, 0, len(req.Skills))
	for _, s := range req.Skills {
		skills = append(skills, domain.Skill{Name: s.Name, Level: s.Level})
	}

	user, pair, err := h.sessions.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Client:   c.Request.UserAgent(),
		Skills:   skills,
		Company:  req.Company,
	})
	if err != nil {
		var vErr *service.ValidationError
		var dErr *service.DuplicateFieldError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		case errors.As(err, &dErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": dErr.Error(), "field": dErr.Field})
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		}
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "User created successfully. Please verify your email.",
	})
}

// Login maneja POST /api/users/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, pair, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password, c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, service.ErrAccountLocked):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account temporarily locked, try again later"})
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "email not verified"})
		case errors.Is(err, service.ErrAccountDeactivated):
			c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		}
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Login successful"})
}

// RefreshToken maneja POST /api/users/refresh-token.
func (h *SessionHandler) RefreshToken(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized - no refresh token"})
		return
	}

	user, pair, err := h.sessions.Refresh(c.Request.Context(), refresh, c.Request.UserAgent())
	if err != nil {
		h.clearSessionCookies(c)
		if errors.Is(err, service.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired", "code": "token_expired"})
			return
		}
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		h.logger.Error("refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not refresh session"})
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Session refreshed"})
}

// Logout maneja POST /api/users/logout. Quita solo el refresh token
// presentado; las cookies se limpian siempre.
func (h *SessionHandler) Logout(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if ok {
		var jti string
		if refresh, err := c.Cookie(refreshCookieName); err == nil && refresh != "" {
			if claims, err := h.tokens.ParseRefreshToken(refresh); err == nil {
				jti = claims.ID
			}
		}
		if err := h.sessions.Logout(c.Request.Context(), user.ID, jti); err != nil {
			h.logger.Warn("logout failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CheckAuth maneja GET /api/users/check-auth.
func (h *SessionHandler) CheckAuth(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Auth valid"})
}

// VerifyEmail maneja POST /api/users/verify-email.
func (h *SessionHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.sessions.VerifyEmail(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrVerificationInvalid), errors.Is(err, service.ErrVerificationExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("verify email failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify email"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// ResendVerification maneja POST /api/users/resend-verification.
func (h *SessionHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.sessions.ResendVerification(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
		default:
			h.logger.Error("resend verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resend verification"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *SessionHandler) setSessionCookies(c *gin.Context, pair service.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookieName, pair.AccessToken,
		int(h.tokens.AccessTTL().Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie(refreshCookieName, pair.RefreshToken,
		int(h.tokens.RefreshTTL().Seconds()), refreshCookiePath, "", h.cookieSecure, true)
}

func (h *SessionHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.cookieSecure, true)
}
