package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/repository"
)

// StatisticsHandler expone los agregados de dashboard por rol.
type StatisticsHandler struct {
	logger     *zap.Logger
	jobs       repository.JobRepository
	apps       repository.ApplicationRepository
	artists    repository.ArtistRepository
	requesters repository.RequesterRepository
}

func NewStatisticsHandler(logger *zap.Logger, jobs repository.JobRepository, apps repository.ApplicationRepository, artists repository.ArtistRepository, requesters repository.RequesterRepository) *StatisticsHandler {
	return &StatisticsHandler{
		logger:     logger,
		jobs:       jobs,
		apps:       apps,
		artists:    artists,
		requesters: requesters,
	}
}

// Requester maneja GET /api/statistics/requester/:userId.
func (h *StatisticsHandler) Requester(c *gin.Context) {
	profile, err := h.requesters.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "requester profile not found"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get statistics"})
		return
	}

	stats, err := h.jobs.StatsForRequester(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("requester stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Artist maneja GET /api/statistics/artist/:userId.
func (h *StatisticsHandler) Artist(c *gin.Context) {
	profile, err := h.artists.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get statistics"})
		return
	}

	stats, err := h.apps.StatsForArtist(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("artist stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
