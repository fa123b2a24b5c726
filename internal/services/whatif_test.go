package services

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/scoring"
)

// westBoard builds a board over three West teams with actual
// standings A=1, B=2, C=3 and per-user predicted orderings.
func westBoard(predictions map[string][]int, awardsPoints map[string]int) []models.LeaderboardEntry {
	teams := []string{"A", "B", "C"}
	actuals := map[string]int{"A": 1, "B": 2, "C": 3}

	var entries []models.LeaderboardEntry
	for user, order := range predictions {
		var preds []models.Prediction
		standPts := 0
		for i, team := range teams {
			p := models.Prediction{
				Team:              team,
				Conference:        models.ConferenceWest,
				PredictedPosition: order[i],
				ActualPosition:    actuals[team],
			}
			p.Points = scoring.StandingPoints(p.PredictedPosition, p.ActualPosition)
			standPts += p.Points
			preds = append(preds, p)
		}

		awards := awardsPoints[user]
		entries = append(entries, models.LeaderboardEntry{User: models.User{
			ID:          user,
			Username:    user,
			DisplayName: user,
			TotalPoints: standPts + awards,
			Categories: models.CategoryMap{
				models.CategoryStandings: {Points: standPts, MaxPoints: 9, Predictions: preds},
				models.CategoryAwards:    {Points: awards, MaxPoints: 10},
			},
		}})
	}
	return entries
}

func TestProjectionWithIdentityDraftsMatchesCanonical(t *testing.T) {
	entries := westBoard(map[string][]int{
		"u1": {1, 2, 3},
		"u2": {3, 1, 2},
	}, map[string]int{"u1": 4, "u2": 2})

	drafts := NewDrafts(BuildStandingsIndex(entries))
	projected := ProjectLeaderboard(entries, drafts)

	require.Len(t, projected, len(entries))
	byID := map[string]models.LeaderboardEntry{}
	for _, e := range projected {
		byID[e.User.ID] = e
	}
	for _, orig := range entries {
		got := byID[orig.User.ID]
		assert.Equal(t, orig.User.TotalPoints, got.User.TotalPoints, "user %s", orig.User.ID)
		assert.Equal(t,
			orig.User.Categories[models.CategoryStandings].Points,
			got.User.Categories[models.CategoryStandings].Points,
			"user %s", orig.User.ID)
	}
}

func TestProjectionAfterSwap(t *testing.T) {
	// User predicts A=1, B=2, C=3: 3+3+3 = 9 standings points.
	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, map[string]int{"u1": 6})
	origTotal := entries[0].User.TotalPoints
	require.Equal(t, 15, origTotal)

	// Draft becomes A, C, B: A sim 1, C sim 2, B sim 3.
	drafts := NewDrafts(BuildStandingsIndex(entries))
	require.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 2, 1, true))

	projected := ProjectLeaderboard(entries, drafts)
	require.Len(t, projected, 1)

	// A: pred 1 sim 1 -> 3; B: pred 2 sim 3 -> 1; C: pred 3 sim 2 -> 1.
	user := projected[0].User
	assert.Equal(t, 5, user.Categories[models.CategoryStandings].Points)
	assert.Equal(t, origTotal-9+5, user.TotalPoints)
	assert.Equal(t, origTotal, user.OrigTotalPoints)

	// Max points and the other categories are untouched.
	assert.Equal(t, 9, user.Categories[models.CategoryStandings].MaxPoints)
	assert.Equal(t, 6, user.Categories[models.CategoryAwards].Points)

	// The canonical leaderboard was not mutated.
	assert.Equal(t, 9, entries[0].User.Categories[models.CategoryStandings].Points)
	assert.Equal(t, 15, entries[0].User.TotalPoints)
}

func TestProjectionDeltaIsStandingsOnly(t *testing.T) {
	entries := westBoard(map[string][]int{
		"u1": {1, 2, 3},
		"u2": {2, 1, 3},
		"u3": {3, 2, 1},
	}, map[string]int{"u1": 5, "u2": 1, "u3": 8})

	drafts := NewDrafts(BuildStandingsIndex(entries))
	require.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 0, 2, true))
	projected := ProjectLeaderboard(entries, drafts)

	totalDelta := 0
	standingsDelta := 0
	awardsBefore, awardsAfter := 0, 0

	origByID := map[string]models.LeaderboardEntry{}
	for _, e := range entries {
		origByID[e.User.ID] = e
	}
	for _, e := range projected {
		orig := origByID[e.User.ID]
		totalDelta += e.User.TotalPoints - orig.User.TotalPoints
		standingsDelta += e.User.Categories[models.CategoryStandings].Points -
			orig.User.Categories[models.CategoryStandings].Points
		awardsBefore += orig.User.Categories[models.CategoryAwards].Points
		awardsAfter += e.User.Categories[models.CategoryAwards].Points
	}

	assert.Equal(t, standingsDelta, totalDelta)
	assert.Equal(t, awardsBefore, awardsAfter)
}

func TestProjectionSortsByNewTotal(t *testing.T) {
	entries := westBoard(map[string][]int{
		"u1": {1, 2, 3},
		"u2": {3, 2, 1},
	}, map[string]int{"u1": 0, "u2": 0})

	// Reverse the draft: u2's reversed prediction becomes exact.
	drafts := NewDrafts(BuildStandingsIndex(entries))
	require.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 0, 2, true))
	require.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 1, 0, true))

	projected := ProjectLeaderboard(entries, drafts)
	require.Len(t, projected, 2)
	assert.True(t, projected[0].User.TotalPoints >= projected[1].User.TotalPoints)
}

func TestApplyDragRequiresConfirmation(t *testing.T) {
	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, nil)
	drafts := NewDrafts(BuildStandingsIndex(entries))
	before := append([]models.OrderedTeam{}, drafts.West...)

	err := drafts.ApplyDrag(models.ConferenceWest, 0, 2, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, before, drafts.West)
}

func TestApplyDragIgnoresBadTargets(t *testing.T) {
	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, nil)
	drafts := NewDrafts(BuildStandingsIndex(entries))
	before := append([]models.OrderedTeam{}, drafts.West...)

	// Dropped outside the list.
	assert.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 0, 5, true))
	assert.Equal(t, before, drafts.West)

	// Unknown conference.
	assert.NoError(t, drafts.ApplyDrag("Atlantic", 0, 1, true))
	assert.Equal(t, before, drafts.West)

	// East is empty on this board; nothing to move.
	assert.NoError(t, drafts.ApplyDrag(models.ConferenceEast, 0, 1, true))
	assert.Empty(t, drafts.East)
}

func TestDraftsReset(t *testing.T) {
	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, nil)
	index := BuildStandingsIndex(entries)

	drafts := NewDrafts(index)
	require.NoError(t, drafts.ApplyDrag(models.ConferenceWest, 0, 2, true))
	require.NotEqual(t, NewDrafts(index).West, drafts.West)

	drafts.Reset(index)
	assert.Equal(t, NewDrafts(index).West, drafts.West)
}

func TestWhatIfStoreLifecycle(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := NewWhatIfStore(0, log)

	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, nil)
	index := BuildStandingsIndex(entries)
	session := store.Create("2025-26", index)
	require.NotEmpty(t, session.ID)

	require.NoError(t, store.Drag(session.ID, models.ConferenceWest, 0, 1, true))
	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "B", got.Drafts.West[0].Team)

	require.NoError(t, store.Reset(session.ID))
	got, _ = store.Get(session.ID)
	assert.Equal(t, "A", got.Drafts.West[0].Team)

	store.Delete(session.ID)
	_, ok = store.Get(session.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Drag(session.ID, models.ConferenceWest, 0, 1, true), ErrSessionNotFound)
}

func TestWhatIfStoreGetReturnsIsolatedDrafts(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := NewWhatIfStore(0, log)

	entries := westBoard(map[string][]int{"u1": {1, 2, 3}}, nil)
	session := store.Create("2025-26", BuildStandingsIndex(entries))

	before, ok := store.Get(session.ID)
	require.True(t, ok)

	require.NoError(t, store.Drag(session.ID, models.ConferenceWest, 0, 2, true))

	// The earlier snapshot does not see the drag.
	assert.Equal(t, "A", before.Drafts.West[0].Team)

	// Mutating a snapshot never reaches the store.
	after, _ := store.Get(session.ID)
	after.Drafts.West[0].Team = "Z"
	fresh, _ := store.Get(session.ID)
	assert.Equal(t, "B", fresh.Drafts.West[0].Team)
}

func TestWhatIfStoreConcurrentDragAndProject(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := NewWhatIfStore(0, log)

	entries := westBoard(map[string][]int{
		"u1": {1, 2, 3},
		"u2": {3, 1, 2},
	}, nil)
	session := store.Create("2025-26", BuildStandingsIndex(entries))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = store.Drag(session.ID, models.ConferenceWest, i%3, (i+1)%3, true)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			got, ok := store.Get(session.ID)
			if !assert.True(t, ok) {
				return
			}
			projected := ProjectLeaderboard(entries, got.Drafts)
			assert.Len(t, projected, len(entries))
		}
	}()

	wg.Wait()
}
