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

// ArtistHandler mantiene dependencias para endpoints de perfiles de artista.
type ArtistHandler struct {
	logger  *zap.Logger
	artists repository.ArtistRepository
	reviews repository.ReviewRepository
}

func NewArtistHandler(logger *zap.Logger, artists repository.ArtistRepository, reviews repository.ReviewRepository) *ArtistHandler {
	return &ArtistHandler{
		logger:  logger,
		artists: artists,
		reviews: reviews,
	}
}

// List maneja GET /api/artists.
func (h *ArtistHandler) List(c *gin.Context) {
	listings, err := h.artists.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list artists failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list artists"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// Get maneja GET /api/artists/:userId. Vista pública; el dueño logueado
// recibe además sus preferencias.
func (h *ArtistHandler) Get(c *gin.Context) {
	userID := c.Param("userId")
	profile, err := h.artists.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get artist"})
		return
	}

	reviews, err := h.reviews.ListBySubject(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list artist reviews failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get artist"})
		return
	}

	caller, _ := GetAuthUser(c)
	if caller.ID != userID {
		profile.Preferences = domain.Preferences{}
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"reviews": reviews,
		"is_owner": caller.ID == userID,
	})
}

// Update maneja PUT /api/artists/:userId con allow-list de campos.
func (h *ArtistHandler) Update(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		Bio              *string                  `json:"bio"`
		Skills           *domain.Skills           `json:"skills"`
		Experience       *[]domain.Experience     `json:"experience"`
		Education        *[]domain.Education      `json:"education"`
		SocialLinks      *domain.SocialLinks      `json:"social_links"`
		ProfessionalInfo *domain.ProfessionalInfo `json:"professional_info"`
		Preferences      *domain.Preferences      `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.artists.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update artist"})
		return
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Skills != nil {
		profile.Skills = *req.Skills
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.Education != nil {
		profile.Education = *req.Education
	}
	if req.SocialLinks != nil {
		profile.SocialLinks = *req.SocialLinks
	}
	if req.ProfessionalInfo != nil {
		profile.ProfessionalInfo = *req.ProfessionalInfo
	}
	if req.Preferences != nil {
		profile.Preferences = *req.Preferences
	}

	if err := h.artists.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("update artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update artist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// AddPortfolioItem maneja POST /api/artists/:userId/portfolio.
func (h *ArtistHandler) AddPortfolioItem(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		ImageURL    string   `json:"image_url" binding:"required"`
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
		Featured    bool     `json:"featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_url and title are required"})
		return
	}

	profile, err := h.artists.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add portfolio item"})
		return
	}

	item := domain.PortfolioItem{
		ID:          uuid.NewString(),
		ImageURL:    req.ImageURL,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Featured:    req.Featured,
		CreatedAt:   time.Now().UTC(),
	}
	profile.PortfolioItems = append(profile.PortfolioItems, item)

	if err := h.artists.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("add portfolio item failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add portfolio item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdatePortfolioItem maneja PUT /api/artists/:userId/portfolio/:itemId.
func (h *ArtistHandler) UpdatePortfolioItem(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		ImageURL    *string   `json:"image_url"`
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Category    *string   `json:"category"`
		Tags        *[]string `json:"tags"`
		Featured    *bool     `json:"featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.artists.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update portfolio item"})
		return
	}

	itemID := c.Param("itemId")
	idx := -1
	for i, item := range profile.PortfolioItems {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio item not found"})
		return
	}

	item := &profile.PortfolioItems[idx]
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Tags != nil {
		item.Tags = *req.Tags
	}
	if req.Featured != nil {
		item.Featured = *req.Featured
	}

	if err := h.artists.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("update portfolio item failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update portfolio item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeletePortfolioItem maneja DELETE /api/artists/:userId/portfolio/:itemId.
func (h *ArtistHandler) DeletePortfolioItem(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	userID := c.Param("userId")
	if caller.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	profile, err := h.artists.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artist profile not found"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete portfolio item"})
		return
	}

	itemID := c.Param("itemId")
	kept := profile.PortfolioItems[:0]
	found := false
	for _, item := range profile.PortfolioItems {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio item not found"})
		return
	}
	profile.PortfolioItems = kept

	if err := h.artists.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("delete portfolio item failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete portfolio item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio item deleted"})
}
