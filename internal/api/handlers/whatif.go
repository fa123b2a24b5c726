package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/utils"
)

type WhatIfHandler struct {
	fetcher LeaderboardFetcher
	store   *services.WhatIfStore
	logger  *logrus.Logger
}

func NewWhatIfHandler(fetcher LeaderboardFetcher, store *services.WhatIfStore, logger *logrus.Logger) *WhatIfHandler {
	return &WhatIfHandler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

type dragRequest struct {
	Conference string `json:"conference" binding:"required"`
	From       *int   `json:"from" binding:"required"`
	To         *int   `json:"to" binding:"required"`
	Enabled    bool   `json:"enabled"`
}

// CreateSession opens a what-if session with drafts initialized from
// the season's standings index.
func (h *WhatIfHandler) CreateSession(c *gin.Context) {
	slug := c.Param("slug")

	board, err := h.fetcher.FetchLeaderboard(c.Request.Context(), slug)
	if err != nil {
		utils.SendUnavailable(c, "Leaderboard data is unavailable")
		return
	}

	index := services.BuildStandingsIndex(board.Entries)
	session := h.store.Create(slug, index)

	h.logger.WithFields(logrus.Fields{
		"component": "whatif",
		"session":   session.ID,
		"season":    slug,
	}).Debug("Opened what-if session")

	utils.SendSuccess(c, session)
}

// GetSession returns the session drafts plus the projected
// leaderboard under them.
func (h *WhatIfHandler) GetSession(c *gin.Context) {
	session, ok := h.store.Get(c.Param("session"))
	if !ok {
		utils.SendNotFound(c, "What-if session not found")
		return
	}

	board, err := h.fetcher.FetchLeaderboard(c.Request.Context(), session.SeasonSlug)
	if err != nil {
		utils.SendUnavailable(c, "Leaderboard data is unavailable")
		return
	}

	utils.SendSuccess(c, gin.H{
		"session":   session,
		"projected": services.ProjectLeaderboard(board.Entries, session.Drafts),
	})
}

// Drag applies one reorder to a conference draft. A drag without the
// enabled flag set is answered with a confirmation-required conflict
// and mutates nothing.
func (h *WhatIfHandler) Drag(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid drag request", err.Error())
		return
	}

	conf := models.Conference(req.Conference)
	err := h.store.Drag(c.Param("session"), conf, *req.From, *req.To, req.Enabled)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		utils.SendNotFound(c, "What-if session not found")
		return
	case errors.Is(err, services.ErrConfirmationRequired):
		utils.SendConfirmationRequired(c, "Enable what-if mode to reorder standings")
		return
	case err != nil:
		utils.SendInternalError(c, "Failed to apply drag")
		return
	}

	session, _ := h.store.Get(c.Param("session"))
	utils.SendSuccess(c, session)
}

// Reset restores the session drafts to the standings index. The
// enabled flag is presentation state and is left untouched.
func (h *WhatIfHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Param("session")); err != nil {
		utils.SendNotFound(c, "What-if session not found")
		return
	}
	session, _ := h.store.Get(c.Param("session"))
	utils.SendSuccess(c, session)
}

// Delete discards the session.
func (h *WhatIfHandler) Delete(c *gin.Context) {
	h.store.Delete(c.Param("session"))
	utils.SendSuccess(c, gin.H{"deleted": true})
}
