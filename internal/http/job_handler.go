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

// JobHandler mantiene dependencias para endpoints de jobs y aplicaciones.
type JobHandler struct {
	logger     *zap.Logger
	jobs       repository.JobRepository
	apps       repository.ApplicationRepository
	artists    repository.ArtistRepository
	requesters repository.RequesterRepository
}

func NewJobHandler(logger *zap.Logger, jobs repository.JobRepository, apps repository.ApplicationRepository, artists repository.ArtistRepository, requesters repository.RequesterRepository) *JobHandler {
	return &JobHandler{
		logger:     logger,
		jobs:       jobs,
		apps:       apps,
		artists:    artists,
		requesters: requesters,
	}
}

// ownsJob resuelve si el usuario autenticado es el requester dueño del job.
func (h *JobHandler) ownsJob(c *gin.Context, job domain.Job) bool {
	caller, ok := GetAuthUser(c)
	if !ok || caller.Role != domain.RoleRequester {
		return false
	}
	profile, err := h.requesters.GetByUserID(c.Request.Context(), caller.ID)
	if err != nil {
		return false
	}
	return profile.ID == job.RequesterID
}

// List maneja GET /api/jobs con filtros por query string.
func (h *JobHandler) List(c *gin.Context) {
	filter := domain.JobFilter{
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Query:    c.Query("q"),
	}
	jobs, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list jobs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// Get maneja GET /api/jobs/:id. Incrementa vistas; si el caller es el dueño
// incluye las aplicaciones recibidas.
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get job"})
		return
	}

	if err := h.jobs.IncrementViews(c.Request.Context(), jobID); err != nil {
		h.logger.Warn("increment views failed", zap.Error(err), zap.String("job_id", jobID))
	} else {
		job.Views++
	}

	resp := gin.H{"job": job}
	if h.ownsJob(c, job) {
		apps, err := h.apps.ListByJob(c.Request.Context(), jobID)
		if err != nil {
			h.logger.Error("list job applications failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get job"})
			return
		}
		resp["applications"] = apps
		resp["is_owner"] = true
	}
	c.JSON(http.StatusOK, resp)
}

// Create maneja POST /api/jobs. Solo requesters.
func (h *JobHandler) Create(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	profile, err := h.requesters.GetByUserID(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusForbidden, gin.H{"error": "requester profile required"})
			return
		}
		h.logger.Error("get requester failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create job"})
		return
	}

	var req struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description" binding:"required"`
		Category    string          `json:"category" binding:"required"`
		Type        string          `json:"type"`
		Budget      domain.Budget   `json:"budget"`
		Timeline    domain.Timeline `json:"timeline"`
		Visibility  string          `json:"visibility"`
		Tags        []string        `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, description and category are required"})
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = "public"
	}

	now := time.Now().UTC()
	job := domain.Job{
		ID:          uuid.NewString(),
		RequesterID: profile.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Budget:      req.Budget,
		Timeline:    req.Timeline,
		Status:      domain.JobStatusOpen,
		Visibility:  visibility,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.logger.Error("create job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create job"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// Update maneja PUT /api/jobs/:id. Solo el requester dueño.
func (h *JobHandler) Update(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update job"})
		return
	}
	if !h.ownsJob(c, job) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Category    *string          `json:"category"`
		Type        *string          `json:"type"`
		Budget      *domain.Budget   `json:"budget"`
		Timeline    *domain.Timeline `json:"timeline"`
		Status      *string          `json:"status"`
		Visibility  *string          `json:"visibility"`
		Tags        *[]string        `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Category != nil {
		job.Category = *req.Category
	}
	if req.Type != nil {
		job.Type = *req.Type
	}
	if req.Budget != nil {
		job.Budget = *req.Budget
	}
	if req.Timeline != nil {
		job.Timeline = *req.Timeline
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.JobStatusDraft, domain.JobStatusOpen, domain.JobStatusInProgress,
			domain.JobStatusCompleted, domain.JobStatusCancelled:
			job.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job status"})
			return
		}
	}
	if req.Visibility != nil {
		job.Visibility = *req.Visibility
	}
	if req.Tags != nil {
		job.Tags = *req.Tags
	}

	if err := h.jobs.Update(c.Request.Context(), job); err != nil {
		h.logger.Error("update job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Delete maneja DELETE /api/jobs/:id. Solo el requester dueño; las
// aplicaciones caen en cascada.
func (h *JobHandler) Delete(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete job"})
		return
	}
	if !h.ownsJob(c, job) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), job.ID); err != nil {
		h.logger.Error("delete job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// Apply maneja POST /api/jobs/:id/apply. Solo artistas, una aplicación por
// job.
func (h *JobHandler) Apply(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	profile, err := h.artists.GetByUserID(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusForbidden, gin.H{"error": "artist profile required"})
			return
		}
		h.logger.Error("get artist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
		return
	}
	if job.Status != domain.JobStatusOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job is not open for applications"})
		return
	}

	exists, err := h.apps.ExistsForJobAndArtist(c.Request.Context(), job.ID, profile.ID)
	if err != nil {
		h.logger.Error("check application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "already applied to this job"})
		return
	}

	var req struct {
		CoverLetter    string  `json:"cover_letter"`
		ProposedAmount float64 `json:"proposed_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	app := domain.Application{
		ID:              uuid.NewString(),
		JobID:           job.ID,
		ArtistProfileID: profile.ID,
		CoverLetter:     req.CoverLetter,
		ProposedAmount:  req.ProposedAmount,
		Status:          domain.ApplicationStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.apps.Create(c.Request.Context(), app); err != nil {
		h.logger.Error("create application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// UpdateApplication maneja PUT /api/jobs/:id/applications/:appId. El dueño
// del job acepta o rechaza; el artista aplicante solo puede retirarse.
func (h *JobHandler) UpdateApplication(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !domain.ValidApplicationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid status is required"})
		return
	}

	app, err := h.apps.GetByID(c.Request.Context(), c.Param("appId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		h.logger.Error("get application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
		return
	}
	if app.JobID != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), app.JobID)
	if err != nil {
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
		return
	}

	caller, _ := GetAuthUser(c)
	allowed := false
	switch req.Status {
	case domain.ApplicationStatusAccepted, domain.ApplicationStatusRejected:
		allowed = h.ownsJob(c, job)
	case domain.ApplicationStatusWithdrawn:
		if profile, err := h.artists.GetByUserID(c.Request.Context(), caller.ID); err == nil {
			allowed = profile.ID == app.ArtistProfileID
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	if err := h.apps.UpdateStatus(c.Request.Context(), app.ID, req.Status); err != nil {
		h.logger.Error("update application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
		return
	}
	app.Status = req.Status

	// Aceptar una aplicación pasa el job a in_progress.
	if req.Status == domain.ApplicationStatusAccepted && job.Status == domain.JobStatusOpen {
		job.Status = domain.JobStatusInProgress
		if err := h.jobs.Update(c.Request.Context(), job); err != nil {
			h.logger.Warn("job status transition failed", zap.Error(err), zap.String("job_id", job.ID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}
