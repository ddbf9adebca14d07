package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/core"
	"github.com/vovakirdan/classhub-server/internal/store"
)

// VotePoints is the award for casting a poll vote.
const VotePoints = 1

// PollHandlers provides HTTP handlers for polls.
type PollHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewPollHandlers creates a new poll handlers instance.
func NewPollHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *PollHandlers {
	return &PollHandlers{hub: hub, store: st, log: logger}
}

// CreatePollRequest represents the create poll request body.
type CreatePollRequest struct {
	Question string   `json:"question" binding:"required"`
	Options  []string `json:"options" binding:"required"`
}

// VoteRequest represents the vote request body.
type VoteRequest struct {
	OptionIndex int    `json:"option_index"`
	Nickname    string `json:"nickname"`
}

// PollResponse represents a poll in API responses.
type PollResponse struct {
	ID       int64          `json:"id"`
	Question string         `json:"question"`
	Options  []string       `json:"options"`
	Votes    map[string]int `json:"votes"`
}

// Create handles poll creation and broadcasts poll-created.
// POST /api/polls
func (h *PollHandlers) Create(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create poll request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	options := make([]string, 0, len(req.Options))
	for _, opt := range req.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at least two options are required"})
		return
	}

	poll, err := h.store.CreatePoll(c.Request.Context(), req.Question, options)
	if err != nil {
		h.log.Error().Err(err).Str("question", req.Question).Msg("failed to create poll")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := h.hub.AnnouncePollCreated(c.Request.Context(), pollNotice(poll)); err != nil {
		h.log.Warn().Err(err).Msg("poll-created broadcast not delivered")
	}

	h.log.Info().Int64("poll_id", poll.ID).Msg("poll created")
	c.JSON(http.StatusCreated, pollResponse(poll))
}

// List returns all polls, newest first.
// GET /api/polls
func (h *PollHandlers) List(c *gin.Context) {
	polls, err := h.store.ListPolls(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list polls")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]PollResponse, 0, len(polls))
	for _, p := range polls {
		out = append(out, pollResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Vote records a vote, credits the voter, and broadcasts poll-updated.
// POST /api/polls/:id/vote
func (h *PollHandlers) Vote(c *gin.Context) {
	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid vote request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	poll, err := h.store.Vote(c.Request.Context(), pollID, req.OptionIndex)
	if err != nil {
		if errors.Is(err, store.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
			return
		}
		h.log.Error().Err(err).Int64("poll_id", pollID).Msg("failed to record vote")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid vote"})
		return
	}

	if req.Nickname != "" {
		ctx := c.Request.Context()
		if err := h.store.EnsureUser(ctx, req.Nickname, ""); err != nil {
			h.log.Warn().Err(err).Str("nickname", req.Nickname).Msg("ensure voter")
		} else if err := h.store.AddPoints(ctx, req.Nickname, VotePoints); err != nil {
			h.log.Warn().Err(err).Str("nickname", req.Nickname).Msg("add vote points")
		}
	}

	if err := h.hub.AnnouncePollUpdated(c.Request.Context(), pollNotice(poll)); err != nil {
		h.log.Warn().Err(err).Msg("poll-updated broadcast not delivered")
	}

	c.JSON(http.StatusOK, pollResponse(poll))
}

func pollNotice(p *store.Poll) core.PollNotice {
	return core.PollNotice{ID: p.ID, Question: p.Question, Options: p.Options, Votes: p.Votes}
}

func pollResponse(p *store.Poll) PollResponse {
	return PollResponse{ID: p.ID, Question: p.Question, Options: p.Options, Votes: p.Votes}
}
