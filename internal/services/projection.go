package services

import (
	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/scoring"
)

// The projection layer produces the two presentation shapes consumed
// by renderers: the rankings list with expandable per-category cards,
// and the users-as-columns comparison grid. It never branches on
// viewport; the mobile transposition is a renderer choice over the
// same projected data.

// Cell styling classes shared by both projections.
const (
	CellExact     = "exact"
	CellClose     = "close"
	CellMiss      = "miss"
	CellCorrect   = "correct"
	CellIncorrect = "incorrect"
	CellPending   = "pending"
)

const maxInterestingPicks = 3

// CategoryBar is one of the three horizontal progress bars on a
// rankings row.
type CategoryBar struct {
	Section   string `json:"section"`
	Title     string `json:"title"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
	IsBest    bool   `json:"is_best,omitempty"`
}

// TeamPick is one standings prediction inside a detail card bucket.
type TeamPick struct {
	Team      string `json:"team"`
	Predicted int    `json:"predicted"`
	Actual    int    `json:"actual,omitempty"`
	Points    int    `json:"points"`
}

// ConferenceBreakdown partitions one conference's picks by outcome.
type ConferenceBreakdown struct {
	Conference models.Conference `json:"conference"`
	Exact      []TeamPick        `json:"exact"`
	OffByOne   []TeamPick        `json:"off_by_one"`
	Missed     []TeamPick        `json:"missed"`
}

// CategoryCard is the expanded detail for one category of one user.
type CategoryCard struct {
	Section   string `json:"section"`
	Title     string `json:"title"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`

	// Standings card only.
	Standings []ConferenceBreakdown `json:"standings,omitempty"`

	// Awards/props cards only.
	Hits   []models.Prediction `json:"hits,omitempty"`
	Misses []models.Prediction `json:"misses,omitempty"`
}

// RankingsRow is one row of the rankings list.
type RankingsRow struct {
	Rank            int            `json:"rank"`
	UserID          string         `json:"user_id"`
	Name            string         `json:"name"`
	Username        string         `json:"username"`
	Avatar          string         `json:"avatar,omitempty"`
	Badges          []string       `json:"badges"`
	TotalPoints     int            `json:"total_points"`
	OrigTotalPoints int            `json:"__origTotalPoints,omitempty"`
	Bars            []CategoryBar  `json:"bars"`
	Detail          []CategoryCard `json:"detail,omitempty"`
}

// RankingsView is the paged rankings-list projection.
type RankingsView struct {
	Rows    []RankingsRow `json:"rows"`
	HasMore bool          `json:"has_more"`
	Totals  models.Totals `json:"totals"`
}

// BuildRankingsList projects ordered entries into the rankings list,
// expanding detail cards for users in the expanded set. Entries are
// expected to be ordered and paged already.
func BuildRankingsList(entries []models.LeaderboardEntry, expanded map[string]bool, hasMore bool, totals models.Totals) RankingsView {
	rows := make([]RankingsRow, 0, len(entries))
	for i, entry := range entries {
		rank := entry.Rank
		if rank == 0 {
			rank = i + 1
		}

		row := RankingsRow{
			Rank:            rank,
			UserID:          entry.User.ID,
			Name:            entry.User.Name(),
			Username:        entry.User.Username,
			Avatar:          entry.User.Avatar,
			Badges:          entry.User.Badges,
			TotalPoints:     entry.User.TotalPoints,
			OrigTotalPoints: entry.User.OrigTotalPoints,
			Bars:            buildBars(entry.User),
		}
		if expanded[entry.User.ID] {
			row.Detail = BuildUserDetail(entry.User)
		}
		rows = append(rows, row)
	}
	return RankingsView{Rows: rows, HasMore: hasMore, Totals: totals}
}

func buildBars(user models.User) []CategoryBar {
	bars := make([]CategoryBar, 0, len(models.AllCategories))
	for _, key := range models.AllCategories {
		cat := user.Categories[key]
		bars = append(bars, CategoryBar{
			Section:   key.Section(),
			Title:     key.WireName(),
			Points:    cat.Points,
			MaxPoints: cat.MaxPoints,
			IsBest:    cat.IsBest,
		})
	}
	return bars
}

// BuildUserDetail renders the three category detail cards for one
// user.
func BuildUserDetail(user models.User) []CategoryCard {
	cards := make([]CategoryCard, 0, len(models.AllCategories))
	for _, key := range models.AllCategories {
		cat := user.Categories[key]
		card := CategoryCard{
			Section:   key.Section(),
			Title:     key.WireName(),
			Points:    cat.Points,
			MaxPoints: cat.MaxPoints,
		}
		if key == models.CategoryStandings {
			card.Standings = buildStandingsBreakdown(cat.Predictions)
		} else {
			card.Hits, card.Misses = hitsAndMisses(user.ID, key, cat)
		}
		cards = append(cards, card)
	}
	return cards
}

func buildStandingsBreakdown(predictions []models.Prediction) []ConferenceBreakdown {
	byConf := map[models.Conference]*ConferenceBreakdown{}
	order := []models.Conference{models.ConferenceWest, models.ConferenceEast}
	for _, conf := range order {
		byConf[conf] = &ConferenceBreakdown{
			Conference: conf,
			Exact:      []TeamPick{},
			OffByOne:   []TeamPick{},
			Missed:     []TeamPick{},
		}
	}

	for _, p := range predictions {
		if !p.IsStandings() {
			continue
		}
		conf := p.Conference
		if conf != models.ConferenceEast {
			conf = models.ConferenceWest
		}

		pick := TeamPick{
			Team:      p.Team,
			Predicted: p.PredictedPosition,
			Actual:    p.ActualPosition,
			Points:    scoring.StandingPoints(p.PredictedPosition, p.ActualPosition),
		}
		breakdown := byConf[conf]
		switch pick.Points {
		case 3:
			breakdown.Exact = append(breakdown.Exact, pick)
		case 1:
			breakdown.OffByOne = append(breakdown.OffByOne, pick)
		default:
			breakdown.Missed = append(breakdown.Missed, pick)
		}
	}

	out := make([]ConferenceBreakdown, 0, len(order))
	for _, conf := range order {
		out = append(out, *byConf[conf])
	}
	return out
}

// hitsAndMisses picks up to three notable correct and incorrect
// predictions for a card. Server-curated interesting lists are
// preferred; otherwise a seeded pseudo-random sample keeps the picks
// stable across renders.
func hitsAndMisses(userID string, key models.CategoryKey, cat models.Category) (hits, misses []models.Prediction) {
	if cat.Interesting != nil && (len(cat.Interesting.HardWins) > 0 || len(cat.Interesting.EasyMisses) > 0) {
		hits = clipPredictions(cat.Interesting.HardWins, maxInterestingPicks)
		misses = clipPredictions(cat.Interesting.EasyMisses, maxInterestingPicks)
		return hits, misses
	}

	var hitPool, missPool []models.Prediction
	for _, p := range cat.Predictions {
		switch {
		case (p.Correct != nil && *p.Correct) || p.Points > 0:
			hitPool = append(hitPool, p)
		case p.Correct != nil && !*p.Correct:
			missPool = append(missPool, p)
		}
	}

	g := newLCG(pickSeed(userID, key.WireName()))
	hits = samplePredictions(g, hitPool, maxInterestingPicks)
	misses = samplePredictions(g, missPool, maxInterestingPicks)
	return hits, misses
}

func samplePredictions(g *lcg, pool []models.Prediction, k int) []models.Prediction {
	if len(pool) == 0 {
		return []models.Prediction{}
	}
	out := make([]models.Prediction, 0, k)
	for _, idx := range sampleIndices(g, len(pool), k) {
		out = append(out, pool[idx])
	}
	return out
}

func clipPredictions(list []models.Prediction, k int) []models.Prediction {
	if len(list) <= k {
		return list
	}
	return list[:k]
}

// GridColumn is one user column of the comparison grid.
type GridColumn struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar,omitempty"`
	Pinned        bool   `json:"pinned"`
	SectionPoints int    `json:"section_points"`
	TotalPoints   int    `json:"total_points"`
}

// GridCell is one user's answer for one row.
type GridCell struct {
	Answer    string `json:"answer,omitempty"`
	Predicted int    `json:"predicted,omitempty"`
	Points    int    `json:"points"`
	Class     string `json:"class"`
}

// GridRow is one team or question row of the comparison grid.
type GridRow struct {
	TeamID      string            `json:"team_id,omitempty"`
	Team        string            `json:"team,omitempty"`
	Conference  models.Conference `json:"conference,omitempty"`
	Position    int               `json:"position,omitempty"`
	QuestionID  string            `json:"question_id,omitempty"`
	Question    string            `json:"question,omitempty"`
	IsFinalized bool              `json:"is_finalized,omitempty"`
	Cells       []GridCell        `json:"cells"`
}

// ComparisonGrid is the users-as-columns projection. Renderers decide
// between the desktop layout and the transposed narrow layout.
type ComparisonGrid struct {
	Section   string       `json:"section"`
	Draggable bool         `json:"draggable"`
	Columns   []GridColumn `json:"columns"`
	Rows      []GridRow    `json:"rows"`
}

// BuildComparisonGrid projects entries into the comparison grid for
// the state's section. For the standings section, teams follow the
// given ordering (the what-if drafts when simulating) and simMap, when
// non-nil, replaces actual positions for cell scoring. For the other
// sections the grid is read-only over the question index.
func BuildComparisonGrid(entries []models.LeaderboardEntry, state PresentationState, teams []models.OrderedTeam, questions []models.Question, simMap map[string]int) ComparisonGrid {
	grid := ComparisonGrid{
		Section:   state.Section.Section(),
		Draggable: state.Section == models.CategoryStandings,
	}

	pinned := make(map[string]bool, len(state.PinnedUserIDs))
	for _, id := range state.PinnedUserIDs {
		pinned[id] = true
	}
	for _, entry := range entries {
		grid.Columns = append(grid.Columns, GridColumn{
			UserID:        entry.User.ID,
			Name:          entry.User.Name(),
			Avatar:        entry.User.Avatar,
			Pinned:        pinned[entry.User.ID],
			SectionPoints: entry.User.Categories[state.Section].Points,
			TotalPoints:   entry.User.TotalPoints,
		})
	}

	if state.Section == models.CategoryStandings {
		grid.Rows = buildStandingsRows(entries, teams, simMap)
	} else {
		grid.Rows = buildQuestionRows(entries, state.Section, questions)
	}
	return grid
}

func buildStandingsRows(entries []models.LeaderboardEntry, teams []models.OrderedTeam, simMap map[string]int) []GridRow {
	rows := make([]GridRow, 0, len(teams))

	// Position within a conference, not within the merged list.
	confPos := map[models.Conference]int{}

	for _, team := range teams {
		confPos[team.Conference]++
		row := GridRow{
			TeamID:     team.ID,
			Team:       team.Team,
			Conference: team.Conference,
			Position:   confPos[team.Conference],
		}

		actual := team.ActualPosition
		if simMap != nil {
			actual = simMap[team.Team]
		}

		for _, entry := range entries {
			cell := GridCell{Class: CellPending}
			if p, ok := findStandingsPrediction(entry.User, team.Team); ok {
				cell.Predicted = p.PredictedPosition
				cell.Points = scoring.StandingPoints(p.PredictedPosition, actual)
				switch {
				case actual == 0:
					cell.Class = CellPending
				case cell.Points == 3:
					cell.Class = CellExact
				case cell.Points == 1:
					cell.Class = CellClose
				default:
					cell.Class = CellMiss
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func buildQuestionRows(entries []models.LeaderboardEntry, key models.CategoryKey, questions []models.Question) []GridRow {
	rows := make([]GridRow, 0, len(questions))
	for _, q := range questions {
		row := GridRow{
			QuestionID:  q.ID,
			Question:    q.Text,
			IsFinalized: q.IsFinalized,
		}

		for _, entry := range entries {
			cell := GridCell{Class: CellPending}
			if p, ok := findQuestionPrediction(entry.User, key, q.ID); ok {
				cell.Answer = p.Answer
				cell.Points = p.Points
				switch {
				case p.Correct == nil:
					cell.Class = CellPending
				case *p.Correct:
					cell.Class = CellCorrect
				default:
					cell.Class = CellIncorrect
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func findStandingsPrediction(user models.User, team string) (models.Prediction, bool) {
	for _, p := range user.Categories[models.CategoryStandings].Predictions {
		if p.Team == team {
			return p, true
		}
	}
	return models.Prediction{}, false
}

func findQuestionPrediction(user models.User, key models.CategoryKey, questionID string) (models.Prediction, bool) {
	for _, p := range user.Categories[key].Predictions {
		if p.QuestionID == questionID {
			return p, true
		}
	}
	return models.Prediction{}, false
}
