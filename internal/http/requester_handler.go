package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
)

// RequesterHandler mantiene dependencias para endpoints de perfiles requester.
type RequesterHandler struct {
	logger     *zap.Logger
	requesters repository.RequesterRepository
	jobs       repository.JobRepository
	reviews    repository.ReviewRepository
}

func NewRequesterHandler(logger *zap.Logger, requesters repository.RequesterRepository, jobs repository.JobRepository, reviews repository.ReviewRepository) *RequesterHandler {
	return &RequesterHandler{
		logger:     logger,
		requesters: requesters,
		jobs:       jobs,
		reviews:    reviews,
	}
}

// List maneja GET /api/requesters.
func (h *RequesterHandler) List(c *gin.Context) {
	profiles, err := h.requesters.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list requesters failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list requesters"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Get maneja GET /api/requesters/:userId.
func (h *RequesterHandler) Get(c *gin.Context) {
	userID := c.Param("userId")
	profile, err := h.requesters.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "requester profile not found"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get requester"})
		return
	}

	reviews, err := h.reviews.ListBySubject(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list requester reviews failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get requester"})
		return
	}

	caller, _ := GetAuthUser(c)
	if caller.ID != userID {
		profile.Preferences = domain.RequesterPreferences{}
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"reviews":  reviews,
		"is_owner": caller.ID == userID,
	})
}

// Update maneja PUT /api/requesters/:userId.
func (h *RequesterHandler) Update(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		Company     *domain.Company              `json:"company"`
		Preferences *domain.RequesterPreferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.requesters.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "requester profile not found"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update requester"})
		return
	}

	if req.Company != nil {
		profile.Company = *req.Company
	}
	if req.Preferences != nil {
		profile.Preferences = *req.Preferences
	}

	if err := h.requesters.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("update requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update requester"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Jobs maneja GET /api/requesters/:userId/jobs.
func (h *RequesterHandler) Jobs(c *gin.Context) {
	userID := c.Param("userId")
	profile, err := h.requesters.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "requester profile not found"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list jobs"})
		return
	}

	jobs, err := h.jobs.ListByRequester(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("list requester jobs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// CreateReview maneja POST /api/requesters/:userId/reviews. Cualquier usuario
// autenticado menos el propio sujeto puede reseñar.
func (h *RequesterHandler) CreateReview(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot review yourself"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
		JobID   string `json:"job_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	if _, err := h.requesters.GetByUserID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "requester profile not found"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		return
	}

	review := domain.Review{
		ID:            uuid.NewString(),
		SubjectUserID: userID,
		AuthorUserID:  caller.ID,
		JobID:         req.JobID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.reviews.Create(c.Request.Context(), review); err != nil {
		h.logger.Error("create review failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
