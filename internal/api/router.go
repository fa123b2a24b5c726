package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/api/handlers"
	"github.com/hoopsight/hoopsight/internal/services"
)

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, fetcher handlers.LeaderboardFetcher, store *services.WhatIfStore, logger *logrus.Logger) {
	leaderboardHandler := handlers.NewLeaderboardHandler(fetcher, store, logger)
	whatIfHandler := handlers.NewWhatIfHandler(fetcher, store, logger)
	seasonsHandler := handlers.NewSeasonsHandler(fetcher, logger)

	// Season picker
	group.GET("/seasons", seasonsHandler.ListSeasons)

	// Leaderboard views
	group.GET("/leaderboards/:slug", leaderboardHandler.GetLeaderboard)
	group.GET("/leaderboards/:slug/rankings", leaderboardHandler.GetRankings)
	group.GET("/leaderboards/:slug/grid", leaderboardHandler.GetGrid)

	// What-if simulation sessions
	group.POST("/whatif/:slug", whatIfHandler.CreateSession)
	group.GET("/whatif/:slug/:session", whatIfHandler.GetSession)
	group.POST("/whatif/:slug/:session/drag", whatIfHandler.Drag)
	group.POST("/whatif/:slug/:session/reset", whatIfHandler.Reset)
	group.DELETE("/whatif/:slug/:session", whatIfHandler.Delete)
}
