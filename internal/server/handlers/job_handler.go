package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/server/middleware"
)

// JobHandler exposes the alumni job board endpoints.
type JobHandler struct {
	jobs   mongodb.JobRepository
	logger *zap.Logger
}

// NewJobHandler constructs the HTTP handler adapter.
func NewJobHandler(jobs mongodb.JobRepository, logger *zap.Logger) *JobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandler{jobs: jobs, logger: logger}
}

type jobInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ApplyURL    string `json:"applyUrl"`
	Status      string `json:"status"`
}

// Create posts a new job.
func (h *JobHandler) Create(c *gin.Context) {
	var input jobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if input.Title == "" || input.Company == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and company are required"})
		return
	}

	job := models.Job{
		PostedBy:    c.GetString(middleware.ContextUserID),
		Title:       input.Title,
		Company:     input.Company,
		Location:    input.Location,
		Description: input.Description,
		ApplyURL:    input.ApplyURL,
		Status:      models.JobStatusOpen,
	}

	if _, err := h.jobs.CreateJob(c.Request.Context(), &job); err != nil {
		respondError(c, h.logger, err, "failed to create job")
		return
	}
	c.JSON(http.StatusCreated, job)
}

// List returns job postings, optionally filtered by ?status=.
func (h *JobHandler) List(c *gin.Context) {
	status := models.JobStatus(c.Query("status"))
	jobs, err := h.jobs.ListJobs(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.logger, err, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

// Get returns one posting.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.GetJobByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Update edits a posting; poster or admin only.
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	existing, err := h.jobs.GetJobByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load job")
		return
	}

	role := c.GetString(middleware.ContextRole)
	callerID := c.GetString(middleware.ContextUserID)
	if role != "admin" && existing.PostedBy != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var input jobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := bson.M{}
	if input.Title != "" {
		fields["title"] = input.Title
	}
	if input.Company != "" {
		fields["company"] = input.Company
	}
	if input.Location != "" {
		fields["location"] = input.Location
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.ApplyURL != "" {
		fields["apply_url"] = input.ApplyURL
	}
	if input.Status == string(models.JobStatusOpen) || input.Status == string(models.JobStatusClosed) {
		fields["status"] = input.Status
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.jobs.UpdateJob(c.Request.Context(), id, fields); err != nil {
		respondError(c, h.logger, err, "failed to update job")
		return
	}

	updated, err := h.jobs.GetJobByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to reload job")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a posting; poster or admin only.
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	existing, err := h.jobs.GetJobByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load job")
		return
	}

	role := c.GetString(middleware.ContextRole)
	callerID := c.GetString(middleware.ContextUserID)
	if role != "admin" && existing.PostedBy != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := h.jobs.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job deleted", "id": id.Hex()})
}
