package http

import (
	"encoding/csv"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/core"
	"github.com/vovakirdan/classhub-server/internal/proto"
	"github.com/vovakirdan/classhub-server/internal/store"
)

// DefaultSession is used when the caller names no session.
const DefaultSession = "Lab Period"

// AttendanceHandlers provides HTTP handlers for the attendance collaborator.
type AttendanceHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewAttendanceHandlers creates a new attendance handlers instance.
func NewAttendanceHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *AttendanceHandlers {
	return &AttendanceHandlers{hub: hub, store: st, log: logger}
}

// MarkAttendanceRequest represents the mark request body.
type MarkAttendanceRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Session  string `json:"session"`
}

// MarkAttendanceResponse represents the mark response body. A repeated mark
// for the same day is a defined idempotent outcome, not an error: ok stays
// true and duplicate is set, with the original timestamp.
type MarkAttendanceResponse struct {
	OK        bool   `json:"ok"`
	Duplicate bool   `json:"duplicate"`
	TS        string `json:"ts"`
	Points    int    `json:"points"`
}

// Mark handles an attendance mark.
// POST /api/attendance
func (h *AttendanceHandlers) Mark(c *gin.Context) {
	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid attendance request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Session == "" {
		req.Session = DefaultSession
	}

	res, err := h.hub.MarkAttendance(c.Request.Context(), req.Nickname, req.Session)
	if err != nil {
		var coreErr *core.CoreError
		if errors.As(err, &coreErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: coreErr.Message})
			return
		}
		h.log.Error().Err(err).Str("nickname", req.Nickname).Msg("failed to mark attendance")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("nickname", req.Nickname).Str("session", req.Session).
		Bool("duplicate", res.Status == core.Duplicate).Msg("attendance mark handled")

	c.JSON(http.StatusOK, MarkAttendanceResponse{
		OK:        true,
		Duplicate: res.Status == core.Duplicate,
		TS:        res.Record.MarkedAt.Format(proto.TimeLayout),
		Points:    res.Record.Points,
	})
}

// Export streams the attendance audit trail as CSV.
// GET /api/attendance/export
func (h *AttendanceHandlers) Export(c *gin.Context) {
	rows, err := h.store.ListAttendance(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list attendance")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=attendance.csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"nickname", "session_name", "timestamp"})
	for _, row := range rows {
		_ = w.Write([]string{row.Nickname, row.Session, row.MarkedAt.Format(proto.TimeLayout)})
	}
	w.Flush()
}
