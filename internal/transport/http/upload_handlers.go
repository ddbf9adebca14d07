package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/core"
	"github.com/vovakirdan/classhub-server/internal/proto"
	"github.com/vovakirdan/classhub-server/internal/store"
)

// UploadHandlers records upload metadata and triggers the new-upload
// broadcast. File bytes themselves are handled elsewhere; only the notice
// passes through here.
type UploadHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{hub: hub, store: st, log: logger}
}

// UploadRequest represents the upload notice request body.
type UploadRequest struct {
	Filename string `json:"filename" binding:"required"`
	Uploader string `json:"uploader"`
}

// UploadResponse represents one recorded upload.
type UploadResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Uploader string `json:"uploader"`
	TS       string `json:"ts"`
}

// Notify records an upload and fans out the new-upload event.
// POST /api/uploads
func (h *UploadHandlers) Notify(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid upload request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Uploader == "" {
		req.Uploader = "anon"
	}

	now := time.Now()
	id, err := h.store.RecordUpload(c.Request.Context(), store.Upload{
		Filename: req.Filename,
		Uploader: req.Uploader,
		At:       now,
	})
	if err != nil {
		h.log.Error().Err(err).Str("filename", req.Filename).Msg("failed to record upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := h.hub.AnnounceUpload(c.Request.Context(), core.UploadNotice{
		Uploader: req.Uploader,
		Filename: req.Filename,
		At:       now,
	}); err != nil {
		h.log.Warn().Err(err).Msg("upload broadcast not delivered")
	}

	c.JSON(http.StatusCreated, UploadResponse{
		ID:       id,
		Filename: req.Filename,
		Uploader: req.Uploader,
		TS:       now.Format(proto.TimeLayout),
	})
}

// List returns the most recent uploads.
// GET /api/uploads
func (h *UploadHandlers) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	uploads, err := h.store.ListUploads(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list uploads")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, UploadResponse{
			ID:       u.ID,
			Filename: u.Filename,
			Uploader: u.Uploader,
			TS:       u.At.Format(proto.TimeLayout),
		})
	}
	c.JSON(http.StatusOK, out)
}
