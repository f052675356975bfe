package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmarket/internal/service"
)

// UserHandler mantiene dependencias para los endpoints de cuentas.
type UserHandler struct {
	logger *zap.Logger
	users  *service.UserService
}

func NewUserHandler(logger *zap.Logger, users *service.UserService) *UserHandler {
	return &UserHandler{logger: logger, users: users}
}

// List maneja GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get maneja GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update maneja PUT /api/users/:id. Solo el dueño puede editar su cuenta y
// solo los campos de la allow-list.
func (h *UserHandler) Update(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	if caller.ID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatar_url"`
		Location  *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.users.Update(c.Request.Context(), caller.ID, service.UserUpdateInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Location:  req.Location,
	})
	if err != nil {
		var vErr *service.ValidationError
		var dErr *service.DuplicateFieldError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		case errors.As(err, &dErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": dErr.Error(), "field": dErr.Field})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("update user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Delete maneja DELETE /api/users/:id. El perfil asociado cae en cascada.
func (h *UserHandler) Delete(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	if caller.ID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), caller.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
