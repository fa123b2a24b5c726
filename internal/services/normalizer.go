package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
)

// Normalizer folds any of the recognized upstream payload shapes into
// the canonical leaderboard. It never returns an error: unrecognized
// shapes degrade to an empty leaderboard and are logged once per kind.
type Normalizer struct {
	logger *logrus.Logger

	mu            sync.Mutex
	loggedUnknown map[string]bool
}

func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{
		logger:        logger,
		loggedUnknown: make(map[string]bool),
	}
}

// rawUser is the superset of user fields seen across upstream shapes.
type rawUser struct {
	ID          json.RawMessage    `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"display_name"`
	FirstName   string             `json:"first_name"`
	Avatar      string             `json:"avatar"`
	TotalPoints *int               `json:"total_points"`
	Points      *int               `json:"points"`
	Accuracy    *float64           `json:"accuracy"`
	Badges      []string           `json:"badges"`
	Categories  models.CategoryMap `json:"categories"`
}

type rawEntry struct {
	Rank int             `json:"rank"`
	User json.RawMessage `json:"user"`
}

type rawEnvelope struct {
	Leaderboard []json.RawMessage `json:"leaderboard"`
	Season      *models.Season    `json:"season"`
	Items       []rawItem         `json:"items"`
	TopUsers    []rawTopUser      `json:"top_users"`
}

type rawItem struct {
	User rawUser `json:"user"`
}

type rawTopUser struct {
	User   rawUser `json:"user"`
	Points int     `json:"points"`
}

// Normalize folds one upstream payload into the canonical leaderboard.
// Recognized shapes, tried in order: the {leaderboard, season}
// envelope, a bare entry list, the answers-aggregation {items} shape,
// and the temporary {top_users} shape.
func (n *Normalizer) Normalize(payload []byte) *models.Leaderboard {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return emptyLeaderboard()
	}

	if trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			n.logUnknownOnce("invalid-list", err)
			return emptyLeaderboard()
		}
		return &models.Leaderboard{Entries: n.normalizeEntryList(elems)}
	}

	if trimmed[0] != '{' {
		n.logUnknownOnce("scalar", nil)
		return emptyLeaderboard()
	}

	var env rawEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		n.logUnknownOnce("invalid-object", err)
		return emptyLeaderboard()
	}

	switch {
	case env.Leaderboard != nil:
		return &models.Leaderboard{
			Entries: n.normalizeEntryList(env.Leaderboard),
			Season:  env.Season,
		}
	case env.Items != nil:
		entries := make([]models.LeaderboardEntry, 0, len(env.Items))
		for _, item := range env.Items {
			user := coalesceUser(item.User)
			user.Categories = models.CategoryMap{}
			if item.User.Points != nil {
				user.TotalPoints = *item.User.Points
			} else {
				user.TotalPoints = 0
			}
			entries = append(entries, models.LeaderboardEntry{User: user})
		}
		return &models.Leaderboard{Entries: entries}
	case env.TopUsers != nil:
		entries := make([]models.LeaderboardEntry, 0, len(env.TopUsers))
		for _, tu := range env.TopUsers {
			user := coalesceUser(tu.User)
			user.Categories = models.CategoryMap{}
			user.TotalPoints = tu.Points
			entries = append(entries, models.LeaderboardEntry{User: user})
		}
		return &models.Leaderboard{Entries: entries}
	}

	n.logUnknownOnce("object", nil)
	return emptyLeaderboard()
}

// normalizeEntryList accepts either {rank, user} wrappers or flat user
// objects as list elements; legacy lists use the latter.
func (n *Normalizer) normalizeEntryList(elems []json.RawMessage) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(elems))
	for _, elem := range elems {
		var wrapper rawEntry
		if err := json.Unmarshal(elem, &wrapper); err != nil {
			n.logUnknownOnce("entry", err)
			continue
		}

		userPayload := wrapper.User
		if userPayload == nil {
			userPayload = elem
		}

		var user rawUser
		if err := json.Unmarshal(userPayload, &user); err != nil {
			n.logUnknownOnce("user", err)
			continue
		}

		entries = append(entries, models.LeaderboardEntry{
			Rank: wrapper.Rank,
			User: coalesceUser(user),
		})
	}
	return entries
}

// coalesceUser applies the field-coalescing rules of the canonical
// model: total_points over points over 0, display_name over first_name
// over username, plus empty defaults for avatar, categories and badges.
func coalesceUser(raw rawUser) models.User {
	user := models.User{
		ID:         coerceID(raw.ID),
		Username:   raw.Username,
		Avatar:     raw.Avatar,
		Accuracy:   raw.Accuracy,
		Badges:     raw.Badges,
		Categories: raw.Categories,
	}

	switch {
	case raw.TotalPoints != nil:
		user.TotalPoints = *raw.TotalPoints
	case raw.Points != nil:
		user.TotalPoints = *raw.Points
	}

	switch {
	case raw.DisplayName != "":
		user.DisplayName = raw.DisplayName
	case raw.FirstName != "":
		user.DisplayName = raw.FirstName
	default:
		user.DisplayName = raw.Username
	}

	if user.Badges == nil {
		user.Badges = []string{}
	}
	if user.Categories == nil {
		user.Categories = models.CategoryMap{}
	}
	return user
}

// coerceID renders numeric and string ids uniformly as strings.
func coerceID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return strconv.Quote(string(raw))
}

func emptyLeaderboard() *models.Leaderboard {
	return &models.Leaderboard{Entries: []models.LeaderboardEntry{}}
}

func (n *Normalizer) logUnknownOnce(kind string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.loggedUnknown[kind] {
		return
	}
	n.loggedUnknown[kind] = true

	entry := n.logger.WithFields(logrus.Fields{
		"component":    "normalizer",
		"payload_kind": kind,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Unrecognized leaderboard payload shape, treating as empty")
}
