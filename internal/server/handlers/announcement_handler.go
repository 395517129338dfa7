package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/server/middleware"
	"github.com/alumnilink/backend/pkg/uploads"
)

// AnnouncementHandler exposes the announcement feed endpoints. Creation and
// edits are admin-gated at the router.
type AnnouncementHandler struct {
	announcements mongodb.AnnouncementRepository
	uploader      uploads.Uploader
	logger        *zap.Logger
}

// NewAnnouncementHandler constructs the HTTP handler adapter.
func NewAnnouncementHandler(announcements mongodb.AnnouncementRepository, uploader uploads.Uploader, logger *zap.Logger) *AnnouncementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementHandler{announcements: announcements, uploader: uploader, logger: logger}
}

type announcementInput struct {
	Title  string `form:"title" json:"title"`
	Body   string `form:"body" json:"body"`
	Pinned *bool  `form:"pinned" json:"pinned"`
}

// Create publishes an announcement with an optional image.
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var input announcementInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Title == "" || input.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	a := models.Announcement{
		CreatedBy: c.GetString(middleware.ContextUserID),
		Title:     input.Title,
		Body:      input.Body,
	}
	if input.Pinned != nil {
		a.Pinned = *input.Pinned
	}

	if url, failed := h.uploadImage(c); failed {
		return
	} else if url != "" {
		a.ImageURL = url
	}

	if _, err := h.announcements.CreateAnnouncement(c.Request.Context(), &a); err != nil {
		respondError(c, h.logger, err, "failed to create announcement")
		return
	}
	c.JSON(http.StatusCreated, a)
}

// List returns the announcement feed.
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, err := h.announcements.ListAnnouncements(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to list announcements")
		return
	}
	if items == nil {
		items = []models.Announcement{}
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one announcement.
func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	a, err := h.announcements.GetAnnouncementByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load announcement")
		return
	}
	c.JSON(http.StatusOK, a)
}

// Update edits an announcement.
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var input announcementInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := bson.M{}
	if input.Title != "" {
		fields["title"] = input.Title
	}
	if input.Body != "" {
		fields["body"] = input.Body
	}
	if input.Pinned != nil {
		fields["pinned"] = *input.Pinned
	}

	if url, failed := h.uploadImage(c); failed {
		return
	} else if url != "" {
		fields["image_url"] = url
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.announcements.UpdateAnnouncement(c.Request.Context(), id, fields); err != nil {
		respondError(c, h.logger, err, "failed to update announcement")
		return
	}

	updated, err := h.announcements.GetAnnouncementByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to reload announcement")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes an announcement.
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	existing, err := h.announcements.GetAnnouncementByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load announcement")
		return
	}

	if err := h.announcements.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete announcement")
		return
	}

	if h.uploader != nil && existing.ImageURL != "" {
		if err := h.uploader.Delete(c.Request.Context(), existing.ImageURL); err != nil {
			h.logger.Warn("failed deleting announcement image", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted", "id": id.Hex()})
}

func (h *AnnouncementHandler) uploadImage(c *gin.Context) (string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return "", true
	}
	if form == nil || len(form.File["image"]) == 0 {
		return "", false
	}

	if h.uploader == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image uploads are not enabled"})
		return "", true
	}

	fileHeader := form.File["image"][0]
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return "", true
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), file)
	if err != nil {
		h.logger.Error("image upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
		return "", true
	}
	return url, false
}
