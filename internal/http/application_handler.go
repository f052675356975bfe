package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
)

// ApplicationHandler mantiene dependencias para endpoints de aplicaciones.
type ApplicationHandler struct {
	logger     *zap.Logger
	apps       repository.ApplicationRepository
	artists    repository.ArtistRepository
	requesters repository.RequesterRepository
}

func NewApplicationHandler(logger *zap.Logger, apps repository.ApplicationRepository, artists repository.ArtistRepository, requesters repository.RequesterRepository) *ApplicationHandler {
	return &ApplicationHandler{
		logger:     logger,
		apps:       apps,
		artists:    artists,
		requesters: requesters,
	}
}

// Get maneja GET /api/applications/:id. Solo el artista aplicante o el
// requester dueño del job pueden verla.
func (h *ApplicationHandler) Get(c *gin.Context) {
	detail, err := h.apps.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		h.logger.Error("get application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get application"})
		return
	}

	caller, _ := GetAuthUser(c)
	allowed := false
	switch caller.Role {
	case domain.RoleArtist:
		if profile, err := h.artists.GetByUserID(c.Request.Context(), caller.ID); err == nil {
			allowed = profile.ID == detail.Application.ArtistProfileID
		}
	case domain.RoleRequester:
		if profile, err := h.requesters.GetByUserID(c.Request.Context(), caller.ID); err == nil && detail.Job != nil {
			allowed = profile.ID == detail.Job.RequesterID
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Mine maneja GET /api/applications/my: las aplicaciones del artista logueado
// con su job asociado.
func (h *ApplicationHandler) Mine(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	profile, err := h.artists.GetByUserID(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusForbidden, gin.H{"error": "artist profile required"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list applications"})
		return
	}
	h.listForProfile(c, profile.ID)
}

// ByArtist maneja GET /api/applications/artist/:artistId. Solo el dueño del
// perfil puede listar sus aplicaciones.
func (h *ApplicationHandler) ByArtist(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	profile, err := h.artists.GetByUserID(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusForbidden, gin.H{"error": "artist profile required"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list applications"})
		return
	}
	if profile.ID != c.Param("artistId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}
	h.listForProfile(c, profile.ID)
}

func (h *ApplicationHandler) listForProfile(c *gin.Context, artistProfileID string) {
	details, err := h.apps.ListByArtist(c.Request.Context(), artistProfileID)
	if err != nil {
		h.logger.Error("list applications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list applications"})
		return
	}
	c.JSON(http.StatusOK, details)
}
