package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/scoring"
	"github.com/hoopsight/hoopsight/internal/services"
)

type fakeFetcher struct {
	board      *models.Leaderboard
	boardErr   error
	seasons    []models.SeasonRef
	seasonsErr error
}

func (f *fakeFetcher) FetchLeaderboard(ctx context.Context, seasonSlug string) (*models.Leaderboard, error) {
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	return f.board, nil
}

func (f *fakeFetcher) FetchSeasons(ctx context.Context) ([]models.SeasonRef, error) {
	return f.seasons, f.seasonsErr
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(fetcher LeaderboardFetcher, store *services.WhatIfStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	leaderboard := NewLeaderboardHandler(fetcher, store, logger)

	r := gin.New()
	r.GET("/leaderboards/:slug", leaderboard.GetLeaderboard)
	r.GET("/leaderboards/:slug/rankings", leaderboard.GetRankings)
	r.GET("/leaderboards/:slug/grid", leaderboard.GetGrid)
	return r
}

func scoredBoard() *models.Leaderboard {
	teams := []string{"Thunder", "Nuggets", "Spurs"}
	actuals := map[string]int{"Thunder": 1, "Nuggets": 2, "Spurs": 3}

	makeUser := func(id string, order []int, awards int) models.User {
		var preds []models.Prediction
		points := 0
		for i, team := range teams {
			p := models.Prediction{
				Team:              team,
				Conference:        models.ConferenceWest,
				PredictedPosition: order[i],
				ActualPosition:    actuals[team],
			}
			p.Points = scoring.StandingPoints(p.PredictedPosition, p.ActualPosition)
			points += p.Points
			preds = append(preds, p)
		}
		return models.User{
			ID:          id,
			Username:    id,
			DisplayName: id,
			TotalPoints: points + awards,
			Categories: models.CategoryMap{
				models.CategoryStandings: {Points: points, MaxPoints: 9, Predictions: preds},
				models.CategoryAwards:    {Points: awards, MaxPoints: 10},
			},
		}
	}

	return &models.Leaderboard{Entries: []models.LeaderboardEntry{
		{Rank: 2, User: makeUser("u2", []int{2, 1, 3}, 1)},
		{Rank: 1, User: makeUser("u1", []int{1, 2, 3}, 4)},
	}}
}

func lockedBoard() *models.Leaderboard {
	end := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	return &models.Leaderboard{Season: &models.Season{
		Slug:              "nba-2026",
		SubmissionsOpen:   true,
		SubmissionEndDate: &end,
	}}
}

func doRequest(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetLeaderboardLockedSeason(t *testing.T) {
	fetcher := &fakeFetcher{
		board:   lockedBoard(),
		seasons: []models.SeasonRef{{Slug: "nba-2025", Year: 2025}},
	}
	r := newTestRouter(fetcher, services.NewWhatIfStore(time.Minute, testLogger()))

	w := doRequest(r, http.MethodGet, "/leaderboards/nba-2026")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Locked      bool               `json:"locked"`
			LockedUntil string             `json:"locked_until"`
			Seasons     []models.SeasonRef `json:"seasons"`
			Leaderboard []json.RawMessage  `json:"leaderboard"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Locked)
	assert.Equal(t, "2026-10-21T00:00:00Z", resp.Data.LockedUntil)
	assert.Equal(t, []models.SeasonRef{{Slug: "nba-2025", Year: 2025}}, resp.Data.Seasons)
	// No rankings leak out while the season is locked.
	assert.Empty(t, resp.Data.Leaderboard)
}

func TestGetRankingsLockedSeason(t *testing.T) {
	fetcher := &fakeFetcher{board: lockedBoard(), seasonsErr: errors.New("down")}
	r := newTestRouter(fetcher, services.NewWhatIfStore(time.Minute, testLogger()))

	w := doRequest(r, http.MethodGet, "/leaderboards/nba-2026/rankings")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Locked  bool              `json:"locked"`
			Seasons []json.RawMessage `json:"seasons"`
			Rows    []json.RawMessage `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Locked)
	// The picker list is best effort; its failure does not block the panel.
	assert.Empty(t, resp.Data.Seasons)
	assert.Empty(t, resp.Data.Rows)
}

func TestGetLeaderboardOrdersByServerRank(t *testing.T) {
	fetcher := &fakeFetcher{board: scoredBoard()}
	r := newTestRouter(fetcher, services.NewWhatIfStore(time.Minute, testLogger()))

	w := doRequest(r, http.MethodGet, "/leaderboards/current")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
			Totals      models.Totals             `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Leaderboard, 2)
	assert.Equal(t, "u1", resp.Data.Leaderboard[0].User.ID)
	assert.Equal(t, "u2", resp.Data.Leaderboard[1].User.ID)
	assert.Equal(t, 2, resp.Data.Totals.TotalPlayers)
}

func TestGetRankingsPagesAndReportsMeta(t *testing.T) {
	fetcher := &fakeFetcher{board: scoredBoard()}
	r := newTestRouter(fetcher, services.NewWhatIfStore(time.Minute, testLogger()))

	w := doRequest(r, http.MethodGet, "/leaderboards/current/rankings?showAll=true&visibleCount=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Rows    []json.RawMessage `json:"rows"`
			HasMore bool              `json:"has_more"`
		} `json:"data"`
		Meta struct {
			VisibleCount int  `json:"visible_count"`
			Total        int  `json:"total"`
			HasMore      bool `json:"has_more"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp.Data.Rows, 1)
	assert.True(t, resp.Data.HasMore)
	assert.Equal(t, 1, resp.Meta.VisibleCount)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.True(t, resp.Meta.HasMore)
}

func TestGetGridUsesWhatIfSession(t *testing.T) {
	board := scoredBoard()
	fetcher := &fakeFetcher{board: board}
	store := services.NewWhatIfStore(time.Minute, testLogger())
	r := newTestRouter(fetcher, store)

	session := store.Create("current", services.BuildStandingsIndex(board.Entries))
	require.NoError(t, store.Drag(session.ID, models.ConferenceWest, 0, 2, true))

	w := doRequest(r, http.MethodGet,
		"/leaderboards/current/grid?showAll=true&whatIfEnabled=true&session="+session.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Grid struct {
				Draggable bool `json:"draggable"`
				Rows      []struct {
					Team     string `json:"team"`
					Position int    `json:"position"`
				} `json:"rows"`
			} `json:"grid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Grid.Rows, 3)
	assert.True(t, resp.Data.Grid.Draggable)
	// Draft order after moving the leader to the bottom.
	assert.Equal(t, "Nuggets", resp.Data.Grid.Rows[0].Team)
	assert.Equal(t, "Thunder", resp.Data.Grid.Rows[2].Team)
	assert.Equal(t, 3, resp.Data.Grid.Rows[2].Position)
}

func TestGetGridIgnoresSessionWhenDisabled(t *testing.T) {
	board := scoredBoard()
	fetcher := &fakeFetcher{board: board}
	store := services.NewWhatIfStore(time.Minute, testLogger())
	r := newTestRouter(fetcher, store)

	session := store.Create("current", services.BuildStandingsIndex(board.Entries))
	require.NoError(t, store.Drag(session.ID, models.ConferenceWest, 0, 2, true))

	w := doRequest(r, http.MethodGet,
		"/leaderboards/current/grid?showAll=true&session="+session.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Grid struct {
				Rows []struct {
					Team string `json:"team"`
				} `json:"rows"`
			} `json:"grid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Grid.Rows, 3)
	// Actual standings order, not the draft.
	assert.Equal(t, "Thunder", resp.Data.Grid.Rows[0].Team)
}

func TestGetLeaderboardUpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{boardErr: errors.New("all endpoints failed")}
	r := newTestRouter(fetcher, services.NewWhatIfStore(time.Minute, testLogger()))

	w := doRequest(r, http.MethodGet, "/leaderboards/current")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", resp.Error.Code)
}
