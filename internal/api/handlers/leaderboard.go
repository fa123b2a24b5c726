package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/utils"
)

// LeaderboardFetcher is the slice of the upstream client the handlers
// depend on.
type LeaderboardFetcher interface {
	FetchLeaderboard(ctx context.Context, seasonSlug string) (*models.Leaderboard, error)
	FetchSeasons(ctx context.Context) ([]models.SeasonRef, error)
}

type LeaderboardHandler struct {
	fetcher LeaderboardFetcher
	store   *services.WhatIfStore
	logger  *logrus.Logger
}

func NewLeaderboardHandler(fetcher LeaderboardFetcher, store *services.WhatIfStore, logger *logrus.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// lockedPanel is the response body for a season whose leaderboard is
// intentionally hidden until submissions close.
type lockedPanel struct {
	Locked      bool               `json:"locked"`
	LockedUntil string             `json:"locked_until"`
	Seasons     []models.SeasonRef `json:"seasons,omitempty"`
}

// GetLeaderboard returns the canonical leaderboard with totals, or
// the locked panel when submissions are still open.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	slug := c.Param("slug")

	board, err := h.fetcher.FetchLeaderboard(c.Request.Context(), slug)
	if err != nil {
		utils.SendUnavailable(c, "Leaderboard data is unavailable")
		return
	}

	if panel, locked := h.lockedResponse(c, board); locked {
		utils.SendSuccess(c, panel)
		return
	}

	utils.SendSuccess(c, gin.H{
		"leaderboard": services.SortByServerRank(board.Entries),
		"season":      board.Season,
		"totals":      services.ComputeTotals(board.Entries),
	})
}

// GetRankings returns the rankings-list projection under the
// presentation state carried in the query string.
func (h *LeaderboardHandler) GetRankings(c *gin.Context) {
	slug := c.Param("slug")

	board, err := h.fetcher.FetchLeaderboard(c.Request.Context(), slug)
	if err != nil {
		utils.SendUnavailable(c, "Leaderboard data is unavailable")
		return
	}
	if panel, locked := h.lockedResponse(c, board); locked {
		utils.SendSuccess(c, panel)
		return
	}

	state := h.parseState(c, slug)
	entries := h.entriesForState(c, board, state)

	ordered := services.OrderEntries(entries, state)
	paged, hasMore := services.Page(ordered, state.VisibleCount)

	view := services.BuildRankingsList(paged, state.ExpandedUserIDs, hasMore, services.ComputeTotals(board.Entries))
	utils.SendSuccessWithMeta(c, view, &utils.Meta{
		VisibleCount: state.VisibleCount,
		Total:        len(ordered),
		HasMore:      hasMore,
	})
}

// GetGrid returns the comparison-grid projection. Under an active
// what-if session the standings rows follow the draft orderings and
// cells are scored against the simulated positions.
func (h *LeaderboardHandler) GetGrid(c *gin.Context) {
	slug := c.Param("slug")

	board, err := h.fetcher.FetchLeaderboard(c.Request.Context(), slug)
	if err != nil {
		utils.SendUnavailable(c, "Leaderboard data is unavailable")
		return
	}
	if panel, locked := h.lockedResponse(c, board); locked {
		utils.SendSuccess(c, panel)
		return
	}

	state := h.parseState(c, slug)
	entries := board.Entries
	teams := services.BuildStandingsIndex(board.Entries)
	var questions []models.Question
	var simMap map[string]int

	if state.Section != models.CategoryStandings {
		questions = services.BuildQuestionIndex(board.Entries, state.Section)
	} else if session, ok := h.activeSession(c, state); ok {
		entries = services.ProjectLeaderboard(board.Entries, session.Drafts)
		teams = append(append([]models.OrderedTeam{}, session.Drafts.West...), session.Drafts.East...)
		simMap = session.Drafts.SimulationMap()
	}

	ordered := services.OrderEntries(entries, state)
	grid := services.BuildComparisonGrid(ordered, state, teams, questions, simMap)

	utils.SendSuccess(c, gin.H{
		"grid":  grid,
		"state": state.EncodeQuery().Encode(),
	})
}

// parseState builds the presentation state from the request query,
// including the non-persisted paging and expansion fields the HTTP
// surface carries explicitly.
func (h *LeaderboardHandler) parseState(c *gin.Context, slug string) services.PresentationState {
	state := services.ParsePresentationState(c.Request.URL.Query(), c.Query("me"), slug)

	if raw := c.Query("visibleCount"); raw != "" {
		if count, err := strconv.Atoi(raw); err == nil && count >= 1 {
			state.VisibleCount = count
		}
	}
	if raw := c.Query("expanded"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				state.ExpandedUserIDs[id] = true
			}
		}
	}
	return state
}

// entriesForState swaps in the what-if projection when a session is
// active; the canonical leaderboard is the fallback whenever the flag
// is off.
func (h *LeaderboardHandler) entriesForState(c *gin.Context, board *models.Leaderboard, state services.PresentationState) []models.LeaderboardEntry {
	if session, ok := h.activeSession(c, state); ok {
		return services.ProjectLeaderboard(board.Entries, session.Drafts)
	}
	return board.Entries
}

func (h *LeaderboardHandler) activeSession(c *gin.Context, state services.PresentationState) (*services.WhatIfSession, bool) {
	if !state.EffectiveWhatIf() {
		return nil, false
	}
	sessionID := c.Query("session")
	if sessionID == "" {
		return nil, false
	}
	return h.store.Get(sessionID)
}

func (h *LeaderboardHandler) lockedResponse(c *gin.Context, board *models.Leaderboard) (lockedPanel, bool) {
	if !board.Season.Locked() {
		return lockedPanel{}, false
	}

	panel := lockedPanel{
		Locked:      true,
		LockedUntil: board.Season.SubmissionEndDate.Format("2006-01-02T15:04:05Z07:00"),
	}

	// Offer past seasons for the picker when available.
	if seasons, err := h.fetcher.FetchSeasons(c.Request.Context()); err == nil {
		panel.Seasons = seasons
	}
	return panel, true
}
