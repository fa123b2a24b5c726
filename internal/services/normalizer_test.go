package services

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/models"
)

func newTestNormalizer() *Normalizer {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewNormalizer(log)
}

func TestNormalizeBareList(t *testing.T) {
	payload := []byte(`[{ "id": 1, "username": "a", "total_points": 10 }, { "id": 2, "username": "b", "points": 5 }]`)

	board := newTestNormalizer().Normalize(payload)
	require.Len(t, board.Entries, 2)
	assert.Nil(t, board.Season)

	assert.Equal(t, "1", board.Entries[0].User.ID)
	assert.Equal(t, 10, board.Entries[0].User.TotalPoints)
	assert.Equal(t, "a", board.Entries[0].User.DisplayName)
	assert.Equal(t, models.CategoryMap{}, board.Entries[0].User.Categories)
	assert.Equal(t, []string{}, board.Entries[0].User.Badges)

	assert.Equal(t, 5, board.Entries[1].User.TotalPoints)
	assert.Equal(t, "b", board.Entries[1].User.DisplayName)
}

func TestNormalizeEnvelope(t *testing.T) {
	payload := []byte(`{
		"leaderboard": [
			{ "rank": 1, "user": { "id": "u1", "username": "alice", "display_name": "Alice", "total_points": 42,
				"categories": { "Regular Season Standings": { "points": 12, "max_points": 90 } } } },
			{ "rank": 2, "user": { "id": "u2", "username": "bob", "first_name": "Bob", "points": 30 } }
		],
		"season": { "slug": "2025-26", "submissions_open": false }
	}`)

	board := newTestNormalizer().Normalize(payload)
	require.Len(t, board.Entries, 2)
	require.NotNil(t, board.Season)
	assert.Equal(t, "2025-26", board.Season.Slug)

	alice := board.Entries[0].User
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "Alice", alice.DisplayName)
	assert.Equal(t, 42, alice.TotalPoints)
	require.Contains(t, alice.Categories, models.CategoryStandings)
	assert.Equal(t, 12, alice.Categories[models.CategoryStandings].Points)

	// display_name falls back to first_name, total_points to points.
	bob := board.Entries[1].User
	assert.Equal(t, "Bob", bob.DisplayName)
	assert.Equal(t, 30, bob.TotalPoints)
}

func TestNormalizeItemsShape(t *testing.T) {
	payload := []byte(`{ "items": [ { "user": { "id": 3, "username": "carol", "points": 17 } } ] }`)

	board := newTestNormalizer().Normalize(payload)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 17, board.Entries[0].User.TotalPoints)
	assert.Equal(t, models.CategoryMap{}, board.Entries[0].User.Categories)
}

func TestNormalizeTopUsersShape(t *testing.T) {
	payload := []byte(`{ "top_users": [ { "user": { "id": 9, "username": "x" }, "points": 7 } ] }`)

	board := newTestNormalizer().Normalize(payload)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "9", board.Entries[0].User.ID)
	assert.Equal(t, 7, board.Entries[0].User.TotalPoints)
	assert.Equal(t, models.CategoryMap{}, board.Entries[0].User.Categories)
}

func TestNormalizeUnknownShapesAreEmpty(t *testing.T) {
	n := newTestNormalizer()

	for _, payload := range []string{
		`{ "unexpected": true }`,
		`"just a string"`,
		`42`,
		``,
		`not json at all`,
	} {
		board := n.Normalize([]byte(payload))
		require.NotNil(t, board, "payload %q", payload)
		assert.Empty(t, board.Entries, "payload %q", payload)
		assert.Nil(t, board.Season, "payload %q", payload)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	payloads := [][]byte{
		[]byte(`[{ "id": 1, "username": "a", "total_points": 10 }]`),
		[]byte(`{ "leaderboard": [ { "rank": 1, "user": { "id": "u1", "username": "alice", "total_points": 42,
			"categories": { "Player Awards": { "points": 3, "max_points": 10,
				"predictions": [ { "question_id": "q1", "question_text": "MVP", "answer": "Jokic", "correct": true, "points": 3 } ] } } } } ],
			"season": { "slug": "2025-26", "submissions_open": false } }`),
		[]byte(`{ "items": [ { "user": { "id": 3, "username": "carol", "points": 17 } } ] }`),
		[]byte(`{ "top_users": [ { "user": { "id": 9, "username": "x" }, "points": 7 } ] }`),
	}

	n := newTestNormalizer()
	for _, payload := range payloads {
		once := n.Normalize(payload)

		reserialized, err := json.Marshal(once)
		require.NoError(t, err)
		twice := n.Normalize(reserialized)

		assert.Equal(t, once, twice, "payload %s", payload)
	}
}
