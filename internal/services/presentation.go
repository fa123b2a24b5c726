package services

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hoopsight/hoopsight/internal/models"
)

// Mode selects the top-level comparison presentation.
type Mode string

const (
	ModeShowcase Mode = "showcase"
	ModeCompare  Mode = "compare"
)

// SortBy selects the displayed-list ordering.
type SortBy string

const (
	SortByTotal   SortBy = "total"
	SortBySection SortBy = "section"
	SortByName    SortBy = "name"
)

// DefaultVisibleCount is the initial rankings-list page size; Load
// More grows it by LoadMoreIncrement.
const (
	DefaultVisibleCount = 20
	LoadMoreIncrement   = 20
)

// PresentationState is the page-owned selection state of the detailed
// comparison view. It is created from URL query parameters, mutated by
// user actions, and written back to the URL.
type PresentationState struct {
	Section            models.CategoryKey
	Mode               Mode
	SortBy             SortBy
	Query              string
	ShowAll            bool
	WhatIfEnabled      bool
	SelectedUserIDs    []string
	PinnedUserIDs      []string
	ExpandedUserIDs    map[string]bool
	VisibleCount       int
	SelectedSeasonSlug string
}

// DefaultPresentationState returns the initial state. The logged-in
// user, when known, starts selected.
func DefaultPresentationState(loggedInUserID, seasonSlug string) PresentationState {
	state := PresentationState{
		Section:            models.CategoryStandings,
		Mode:               ModeCompare,
		SortBy:             SortByTotal,
		SelectedUserIDs:    []string{},
		PinnedUserIDs:      []string{},
		ExpandedUserIDs:    map[string]bool{},
		VisibleCount:       DefaultVisibleCount,
		SelectedSeasonSlug: seasonSlug,
	}
	if state.SelectedSeasonSlug == "" {
		state.SelectedSeasonSlug = "current"
	}
	if loggedInUserID != "" {
		state.SelectedUserIDs = []string{loggedInUserID}
	}
	return state
}

// ParsePresentationState reads the persisted fields from URL query
// parameters. Unrecognized parameters and out-of-range values fall
// back to defaults.
func ParsePresentationState(values url.Values, loggedInUserID, seasonSlug string) PresentationState {
	state := DefaultPresentationState(loggedInUserID, seasonSlug)

	if section, ok := models.ParseSection(values.Get("section")); ok {
		state.Section = section
	}
	switch Mode(values.Get("mode")) {
	case ModeShowcase:
		state.Mode = ModeShowcase
	case ModeCompare:
		state.Mode = ModeCompare
	}
	switch SortBy(values.Get("sortBy")) {
	case SortByTotal, SortBySection, SortByName:
		state.SortBy = SortBy(values.Get("sortBy"))
	}
	if showAll, err := strconv.ParseBool(values.Get("showAll")); err == nil {
		state.ShowAll = showAll
	}
	if enabled, err := strconv.ParseBool(values.Get("whatIfEnabled")); err == nil {
		state.WhatIfEnabled = enabled
	}
	if values.Has("users") {
		state.SelectedUserIDs = splitIDList(values.Get("users"))
	}
	if values.Has("pinned") {
		state.PinnedUserIDs = splitIDList(values.Get("pinned"))
	}
	if q := values.Get("q"); q != "" {
		state.Query = q
	}
	return state
}

// EncodeQuery writes the persisted fields back to URL query
// parameters. Fields not listed as persisted stay off the URL, and
// whatIfEnabled is only meaningful on the standings section.
func (s PresentationState) EncodeQuery() url.Values {
	values := url.Values{}
	values.Set("section", s.Section.Section())
	values.Set("mode", string(s.Mode))
	values.Set("sortBy", string(s.SortBy))
	values.Set("showAll", strconv.FormatBool(s.ShowAll))
	if s.Section == models.CategoryStandings {
		values.Set("whatIfEnabled", strconv.FormatBool(s.WhatIfEnabled))
	}
	values.Set("users", strings.Join(s.SelectedUserIDs, ","))
	values.Set("pinned", strings.Join(s.PinnedUserIDs, ","))
	return values
}

// EffectiveWhatIf reports whether the simulator is active: the flag
// only applies on the standings section. Leaving the section disables
// the simulator but the drafts are retained.
func (s PresentationState) EffectiveWhatIf() bool {
	return s.WhatIfEnabled && s.Section == models.CategoryStandings
}

func splitIDList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PinPulse is a one-shot animation cue emitted when a pin is toggled.
type PinPulse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the pulse should still animate.
func (p PinPulse) Active(now time.Time) bool {
	return p.UserID != "" && now.Before(p.ExpiresAt)
}

// TogglePin flips a user's pinned state and emits a 1s pulse.
func (s *PresentationState) TogglePin(userID string, now time.Time) PinPulse {
	for i, id := range s.PinnedUserIDs {
		if id == userID {
			s.PinnedUserIDs = append(s.PinnedUserIDs[:i], s.PinnedUserIDs[i+1:]...)
			return PinPulse{UserID: userID, ExpiresAt: now.Add(time.Second)}
		}
	}
	s.PinnedUserIDs = append(s.PinnedUserIDs, userID)
	return PinPulse{UserID: userID, ExpiresAt: now.Add(time.Second)}
}

// OrderEntries applies the displayed-list ordering rule: the showAll
// filter, the search filter, the selected sort, then a stable
// partition of pinned users to the front in their existing relative
// order.
func OrderEntries(entries []models.LeaderboardEntry, state PresentationState) []models.LeaderboardEntry {
	filtered := make([]models.LeaderboardEntry, 0, len(entries))

	selected := make(map[string]bool, len(state.SelectedUserIDs))
	for _, id := range state.SelectedUserIDs {
		selected[id] = true
	}
	query := strings.ToLower(state.Query)

	for _, entry := range entries {
		if !state.ShowAll && !selected[entry.User.ID] {
			continue
		}
		if query != "" {
			name := strings.ToLower(entry.User.DisplayName)
			username := strings.ToLower(entry.User.Username)
			if !strings.Contains(name, query) && !strings.Contains(username, query) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}

	switch state.SortBy {
	case SortBySection:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].User.Categories[state.Section].Points >
				filtered[j].User.Categories[state.Section].Points
		})
	case SortByName:
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(filtered, func(i, j int) bool {
			return collator.CompareString(filtered[i].User.Name(), filtered[j].User.Name()) < 0
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].User.TotalPoints > filtered[j].User.TotalPoints
		})
	}

	pinned := make(map[string]bool, len(state.PinnedUserIDs))
	for _, id := range state.PinnedUserIDs {
		pinned[id] = true
	}
	if len(pinned) == 0 {
		return filtered
	}

	front := make([]models.LeaderboardEntry, 0, len(filtered))
	rest := make([]models.LeaderboardEntry, 0, len(filtered))
	for _, entry := range filtered {
		if pinned[entry.User.ID] {
			front = append(front, entry)
		} else {
			rest = append(rest, entry)
		}
	}
	return append(front, rest...)
}

// SortByServerRank orders entries the way the canonical leaderboard is
// presented: rank ascending, with missing ranks after present ones.
func SortByServerRank(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rank, out[j].Rank
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
	return out
}

// Page caps the rankings list to the visible count.
func Page(entries []models.LeaderboardEntry, visibleCount int) ([]models.LeaderboardEntry, bool) {
	if visibleCount < 1 {
		visibleCount = DefaultVisibleCount
	}
	if len(entries) <= visibleCount {
		return entries, false
	}
	return entries[:visibleCount], true
}
