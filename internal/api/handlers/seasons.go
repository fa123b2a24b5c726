package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/pkg/utils"
)

type SeasonsHandler struct {
	fetcher LeaderboardFetcher
	logger  *logrus.Logger
}

func NewSeasonsHandler(fetcher LeaderboardFetcher, logger *logrus.Logger) *SeasonsHandler {
	return &SeasonsHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ListSeasons returns the participated-seasons list for the picker.
func (h *SeasonsHandler) ListSeasons(c *gin.Context) {
	seasons, err := h.fetcher.FetchSeasons(c.Request.Context())
	if err != nil {
		utils.SendUnavailable(c, "Season list is unavailable")
		return
	}
	utils.SendSuccess(c, seasons)
}
