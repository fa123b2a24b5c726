package services

import (
	"sort"

	"github.com/hoopsight/hoopsight/internal/models"
)

// BuildStandingsIndex derives the ordered conference team sets from
// all entries' standings predictions. For each distinct team the
// smallest observed actual position wins (zero counts as unknown and
// sorts last); teams with no conference default to West. The result
// is ordered West before East, then by actual position, then by name.
func BuildStandingsIndex(entries []models.LeaderboardEntry) []models.OrderedTeam {
	seen := make(map[string]models.StandingsTeam)

	for _, entry := range entries {
		cat, ok := entry.User.Categories[models.CategoryStandings]
		if !ok {
			continue
		}
		for _, p := range cat.Predictions {
			if !p.IsStandings() {
				continue
			}
			conf := p.Conference
			if conf != models.ConferenceEast && conf != models.ConferenceWest {
				conf = models.ConferenceWest
			}

			existing, ok := seen[p.Team]
			if !ok {
				seen[p.Team] = models.StandingsTeam{
					Team:           p.Team,
					Conference:     conf,
					ActualPosition: p.ActualPosition,
				}
				continue
			}
			if betterPosition(p.ActualPosition, existing.ActualPosition) {
				existing.ActualPosition = p.ActualPosition
				seen[p.Team] = existing
			}
		}
	}

	teams := make([]models.OrderedTeam, 0, len(seen))
	for _, t := range seen {
		teams = append(teams, models.NewOrderedTeam(t))
	}

	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Conference != b.Conference {
			return a.Conference == models.ConferenceWest
		}
		if a.ActualPosition != b.ActualPosition {
			return betterPosition(a.ActualPosition, b.ActualPosition)
		}
		return a.Team < b.Team
	})
	return teams
}

// betterPosition reports whether a sorts before b, with zero treated
// as unknown and therefore worst.
func betterPosition(a, b int) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

// BuildQuestionIndex derives the sorted question set for a
// non-standings category, deduplicated by question id.
func BuildQuestionIndex(entries []models.LeaderboardEntry, key models.CategoryKey) []models.Question {
	seen := make(map[string]models.Question)

	for _, entry := range entries {
		cat, ok := entry.User.Categories[key]
		if !ok {
			continue
		}
		for _, p := range cat.Predictions {
			if p.QuestionID == "" {
				continue
			}
			if _, ok := seen[p.QuestionID]; ok {
				continue
			}
			seen[p.QuestionID] = models.Question{
				ID:          p.QuestionID,
				Text:        p.QuestionText,
				IsFinalized: p.IsFinalized,
			}
		}
	}

	questions := make([]models.Question, 0, len(seen))
	for _, q := range seen {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Text != questions[j].Text {
			return questions[i].Text < questions[j].Text
		}
		return questions[i].ID < questions[j].ID
	})
	return questions
}
