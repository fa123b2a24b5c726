package services

import (
	"errors"
	"sort"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/scoring"
)

// ErrConfirmationRequired is returned for a drag attempted while
// what-if mode is not enabled. The caller surfaces a confirmation
// prompt; no state is mutated.
var ErrConfirmationRequired = errors.New("what-if mode must be enabled before reordering standings")

// ErrSessionNotFound is returned for operations on an expired or
// unknown what-if session.
var ErrSessionNotFound = errors.New("what-if session not found")

// Drafts holds the mutable what-if orderings of both conferences.
// They are only ever mutated through ApplyDrag and Reset; the
// canonical leaderboard is never touched.
type Drafts struct {
	West []models.OrderedTeam `json:"west"`
	East []models.OrderedTeam `json:"east"`
}

// NewDrafts partitions the standings index into per-conference draft
// orderings, preserving the index order.
func NewDrafts(index []models.OrderedTeam) *Drafts {
	d := &Drafts{}
	for _, t := range index {
		if t.Conference == models.ConferenceEast {
			d.East = append(d.East, t)
		} else {
			d.West = append(d.West, t)
		}
	}
	return d
}

// Reset restores both orderings from the index. The enabled flag is
// presentation state and is deliberately left alone.
func (d *Drafts) Reset(index []models.OrderedTeam) {
	fresh := NewDrafts(index)
	d.West = fresh.West
	d.East = fresh.East
}

// Clone returns a deep copy safe to mutate.
func (d *Drafts) Clone() *Drafts {
	out := &Drafts{
		West: make([]models.OrderedTeam, len(d.West)),
		East: make([]models.OrderedTeam, len(d.East)),
	}
	copy(out.West, d.West)
	copy(out.East, d.East)
	return out
}

// ApplyDrag moves one team within the named conference's draft.
// A drag while disabled returns ErrConfirmationRequired. A drag with
// an unknown conference or an out-of-range destination (dropped
// outside the list) is silently ignored.
func (d *Drafts) ApplyDrag(conf models.Conference, from, to int, enabled bool) error {
	if !enabled {
		return ErrConfirmationRequired
	}

	var order *[]models.OrderedTeam
	switch conf {
	case models.ConferenceWest:
		order = &d.West
	case models.ConferenceEast:
		order = &d.East
	default:
		return nil
	}

	if from < 0 || from >= len(*order) || to < 0 || to >= len(*order) || from == to {
		return nil
	}
	*order = scoring.Reorder(*order, from, to)
	return nil
}

// SimulationMap maps team name to 1-based simulated position, merged
// across both conferences.
func (d *Drafts) SimulationMap() map[string]int {
	m := make(map[string]int, len(d.West)+len(d.East))
	for i, t := range d.West {
		m[t.Team] = i + 1
	}
	for i, t := range d.East {
		m[t.Team] = i + 1
	}
	return m
}

// ProjectLeaderboard recomputes every entry's standings category and
// total against the draft orderings, leaving all other categories
// untouched. It is a pure transform: entries are cloned, the original
// total is preserved on the user for diff display, and the result is
// re-sorted by the new total with positional ranks.
func ProjectLeaderboard(entries []models.LeaderboardEntry, d *Drafts) []models.LeaderboardEntry {
	simMap := d.SimulationMap()

	projected := make([]models.LeaderboardEntry, len(entries))
	for i, entry := range entries {
		user := entry.User
		user.Categories = entry.User.Categories.Clone()

		cat, ok := user.Categories[models.CategoryStandings]
		if ok {
			simPoints := 0
			for _, p := range cat.Predictions {
				if !p.IsStandings() {
					continue
				}
				simPoints += scoring.StandingPoints(p.PredictedPosition, simMap[p.Team])
			}

			user.OrigTotalPoints = user.TotalPoints
			user.TotalPoints = user.TotalPoints - cat.Points + simPoints
			cat.Points = simPoints
			user.Categories[models.CategoryStandings] = cat
		}

		projected[i] = models.LeaderboardEntry{Rank: entry.Rank, User: user}
	}

	// The original rank field is kept as a comparison hint; the new
	// rank is the position in the sorted result.
	sort.SliceStable(projected, func(i, j int) bool {
		return projected[i].User.TotalPoints > projected[j].User.TotalPoints
	})
	return projected
}
