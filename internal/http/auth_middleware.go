package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
	"artmarket/internal/service"
)

const (
	authUserKey       = "auth_user"
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
	// La cookie de refresh se acota a /api/users: solo los endpoints de
	// refresh y logout la reciben.
	refreshCookiePath = "/api/users"
)

// RequireAuth valida el access token de la cookie (o del header Bearer),
// carga el usuario y lo deja en el contexto para la autorización posterior.
func RequireAuth(tokens *service.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized - no token"})
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				// Código aparte: el cliente dispara el refresh silencioso en
				// vez de forzar re-login.
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired", "code": "token_expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized - invalid token"})
			}
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized - user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
			}
			c.Abort()
			return
		}
		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
			c.Abort()
			return
		}
		if !user.IsEmailVerified {
			c.JSON(http.StatusForbidden, gin.H{"error": "email not verified"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// RequireRole compone sobre RequireAuth: rechaza si el rol del usuario
// autenticado no está en el conjunto.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetAuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "role " + user.Role + " is not authorized"})
		c.Abort()
	}
}

// OptionalAuth nunca rechaza: un token ausente o inválido simplemente no
// adjunta identidad, para que los endpoints públicos distingan visitantes de
// usuarios logueados.
func OptionalAuth(tokens *service.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.Active || !user.IsEmailVerified {
			c.Next()
			return
		}
		c.Set(authUserKey, user)
		c.Next()
	}
}

// GetAuthUser obtiene el usuario autenticado desde el contexto.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(accessCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
