package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/server/middleware"
	"github.com/alumnilink/backend/pkg/uploads"
)

// EventHandler exposes event CRUD and RSVP endpoints. Validation happens
// inline; the first failing check short-circuits.
type EventHandler struct {
	events   mongodb.EventRepository
	uploader uploads.Uploader
	logger   *zap.Logger
}

// NewEventHandler constructs the HTTP handler adapter. The uploader may be
// nil; image uploads are then rejected.
func NewEventHandler(events mongodb.EventRepository, uploader uploads.Uploader, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{events: events, uploader: uploader, logger: logger}
}

type eventInput struct {
	Title           string `form:"title" json:"title"`
	Description     string `form:"description" json:"description"`
	Location        string `form:"location" json:"location"`
	StartDate       string `form:"startDate" json:"startDate"`
	EndDate         string `form:"endDate" json:"endDate"`
	Capacity        int    `form:"capacity" json:"capacity"`
	SponsorshipOn   *bool  `form:"sponsorshipEnabled" json:"sponsorshipEnabled"`
	SponsorshipGoal int64  `form:"sponsorshipGoal" json:"sponsorshipGoal"`
}

func parseEventDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Create registers a new event, uploading any attached images.
func (h *EventHandler) Create(c *gin.Context) {
	var input eventInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Title == "" || input.StartDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and startDate are required"})
		return
	}

	startDate, ok := parseEventDate(input.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate, use RFC3339 or YYYY-MM-DD"})
		return
	}

	event := models.Event{
		CreatedBy:   c.GetString(middleware.ContextUserID),
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartDate:   startDate,
		Capacity:    input.Capacity,
	}

	if input.EndDate != "" {
		endDate, ok := parseEventDate(input.EndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate, use RFC3339 or YYYY-MM-DD"})
			return
		}
		event.EndDate = endDate
	}

	if input.SponsorshipOn != nil && *input.SponsorshipOn {
		event.Sponsorship = &models.Sponsorship{Enabled: true, Goal: input.SponsorshipGoal}
	}

	imageURLs, failed := h.uploadImages(c)
	if failed {
		return
	}
	event.Images = imageURLs

	if _, err := h.events.CreateEvent(c.Request.Context(), &event); err != nil {
		respondError(c, h.logger, err, "failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// List returns all events.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// Get returns one event.
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// Update edits an event. Events that have already started are locked to
// prevent retroactive tampering.
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	existing, err := h.events.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load event")
		return
	}

	role := c.GetString(middleware.ContextRole)
	callerID := c.GetString(middleware.ContextUserID)
	if role != "admin" && existing.CreatedBy != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if existing.HasStarted(time.Now()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "event has already started and can no longer be edited"})
		return
	}

	var input eventInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := bson.M{}
	if input.Title != "" {
		fields["title"] = input.Title
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.Location != "" {
		fields["location"] = input.Location
	}
	if input.Capacity > 0 {
		fields["capacity"] = input.Capacity
	}
	if input.StartDate != "" {
		startDate, ok := parseEventDate(input.StartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate, use RFC3339 or YYYY-MM-DD"})
			return
		}
		fields["start_date"] = startDate
	}
	if input.EndDate != "" {
		endDate, ok := parseEventDate(input.EndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate, use RFC3339 or YYYY-MM-DD"})
			return
		}
		fields["end_date"] = endDate
	}
	if input.SponsorshipOn != nil {
		fields["sponsorship.enabled"] = *input.SponsorshipOn
		if input.SponsorshipGoal > 0 {
			fields["sponsorship.goal"] = input.SponsorshipGoal
		}
	}

	imageURLs, failed := h.uploadImages(c)
	if failed {
		return
	}
	if len(imageURLs) > 0 {
		fields["images"] = append(existing.Images, imageURLs...)
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.events.UpdateEvent(c.Request.Context(), id, fields); err != nil {
		respondError(c, h.logger, err, "failed to update event")
		return
	}

	updated, err := h.events.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to reload event")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes an event; owner or admin only.
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	existing, err := h.events.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load event")
		return
	}

	role := c.GetString(middleware.ContextRole)
	callerID := c.GetString(middleware.ContextUserID)
	if role != "admin" && existing.CreatedBy != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := h.events.DeleteEvent(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete event")
		return
	}

	if h.uploader != nil {
		for _, img := range existing.Images {
			if err := h.uploader.Delete(c.Request.Context(), img); err != nil {
				h.logger.Warn("failed deleting event image", zap.String("url", img), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "event deleted", "id": id.Hex()})
}

// RSVP registers the caller as an attendee.
func (h *EventHandler) RSVP(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load event")
		return
	}

	if event.HasStarted(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event has already started"})
		return
	}
	if event.IsFull() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is at capacity"})
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	if err := h.events.AddAttendee(c.Request.Context(), id, callerID); err != nil {
		respondError(c, h.logger, err, "failed to record rsvp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rsvp recorded"})
}

// CancelRSVP removes the caller from the attendee list.
func (h *EventHandler) CancelRSVP(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	if err := h.events.RemoveAttendee(c.Request.Context(), id, callerID); err != nil {
		respondError(c, h.logger, err, "failed to cancel rsvp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rsvp cancelled"})
}

// uploadImages pushes any multipart "images" files to the CDN. The second
// return value is true when a response has already been written.
func (h *EventHandler) uploadImages(c *gin.Context) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return nil, true
	}
	if form == nil || len(form.File["images"]) == 0 {
		return nil, false
	}

	if h.uploader == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image uploads are not enabled"})
		return nil, true
	}

	var urls []string
	for _, fileHeader := range form.File["images"] {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
			return nil, true
		}

		url, err := h.uploader.Upload(c.Request.Context(), file)
		file.Close()
		if err != nil {
			h.logger.Error("image upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return nil, true
		}
		urls = append(urls, url)
	}
	return urls, false
}
