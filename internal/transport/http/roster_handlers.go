package http

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/store"
)

// DefaultTeam is assigned when enrollment names no team.
const DefaultTeam = "boys"

// RosterHandlers serves enrollment and point rankings.
type RosterHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRosterHandlers creates a new roster handlers instance.
func NewRosterHandlers(st store.Store, logger *zerolog.Logger) *RosterHandlers {
	return &RosterHandlers{store: st, log: logger}
}

// EnterRequest represents the enrollment request body. A blank nickname gets
// a generated one; a blank team falls back to the default.
type EnterRequest struct {
	Nickname string `json:"nickname"`
	Team     string `json:"team"`
}

// EnterResponse represents the enrolled identity.
type EnterResponse struct {
	Nickname string `json:"nickname"`
	Team     string `json:"team"`
}

// Enter enrolls a participant on the roster with zero points. Re-entering
// an existing nickname keeps the original row.
// POST /api/enter
func (h *RosterHandlers) Enter(c *gin.Context) {
	var req EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid enter request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = fmt.Sprintf("User%d", rand.IntN(900)+100)
	}
	team := strings.ToLower(strings.TrimSpace(req.Team))
	if team == "" {
		team = DefaultTeam
	}

	if err := h.store.EnsureUser(c.Request.Context(), nickname, team); err != nil {
		h.log.Error().Err(err).Str("nickname", nickname).Msg("failed to enroll user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("nickname", nickname).Str("team", team).Msg("participant enrolled")
	c.JSON(http.StatusOK, EnterResponse{Nickname: nickname, Team: team})
}

// RankResponse represents one leaderboard row.
type RankResponse struct {
	Nickname string `json:"nickname"`
	Team     string `json:"team,omitempty"`
	Points   int    `json:"points"`
}

// LeaderboardResponse represents the leaderboard response body.
type LeaderboardResponse struct {
	Users []RankResponse `json:"users"`
	Teams map[string]int `json:"teams"`
}

// Leaderboard returns the ranking and per-team totals.
// GET /api/leaderboard
func (h *RosterHandlers) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	ranks, err := h.store.Leaderboard(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query leaderboard")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	teams, err := h.store.TeamPoints(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query team points")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	users := make([]RankResponse, 0, len(ranks))
	for _, r := range ranks {
		users = append(users, RankResponse{Nickname: r.Nickname, Team: r.Team, Points: r.Points})
	}
	c.JSON(http.StatusOK, LeaderboardResponse{Users: users, Teams: teams})
}
