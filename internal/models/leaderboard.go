package models

// Prediction is one user's bet on one question or one team position.
// Standings predictions carry team/conference/positions; question
// predictions carry question fields and a stringified answer.
// Positions are 1-based; zero means absent.
type Prediction struct {
	QuestionID        string     `json:"question_id,omitempty"`
	QuestionText      string     `json:"question_text,omitempty"`
	Team              string     `json:"team,omitempty"`
	Conference        Conference `json:"conference,omitempty"`
	PredictedPosition int        `json:"predicted_position,omitempty"`
	Answer            string     `json:"answer,omitempty"`
	ActualPosition    int        `json:"actual_position,omitempty"`
	Correct           *bool      `json:"correct,omitempty"`
	Points            int        `json:"points,omitempty"`
	GlobalCorrectRate float64    `json:"global_correct_rate,omitempty"`
	IsFinalized       bool       `json:"is_finalized,omitempty"`
}

// Resolved reports whether the prediction has been graded either way.
func (p Prediction) Resolved() bool {
	return p.Correct != nil
}

// IsStandings reports whether the prediction is a team-position bet.
func (p Prediction) IsStandings() bool {
	return p.Team != ""
}

// Interesting holds server-curated notable picks for one category.
type Interesting struct {
	HardWins   []Prediction `json:"hard_wins,omitempty"`
	EasyMisses []Prediction `json:"easy_misses,omitempty"`
}

// Category bundles a user's predictions sharing one category name.
type Category struct {
	Points      int          `json:"points"`
	MaxPoints   int          `json:"max_points"`
	Predictions []Prediction `json:"predictions,omitempty"`
	IsBest      bool         `json:"is_best,omitempty"`
	Interesting *Interesting `json:"interesting,omitempty"`
}

// Clone returns a deep copy safe to mutate.
func (c Category) Clone() Category {
	out := c
	if c.Predictions != nil {
		out.Predictions = make([]Prediction, len(c.Predictions))
		copy(out.Predictions, c.Predictions)
	}
	if c.Interesting != nil {
		cp := *c.Interesting
		out.Interesting = &cp
	}
	return out
}

// User is one leaderboard participant.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	TotalPoints int         `json:"total_points"`
	Accuracy    *float64    `json:"accuracy,omitempty"`
	Badges      []string    `json:"badges"`
	Categories  CategoryMap `json:"categories"`

	// OrigTotalPoints carries the pre-simulation total on what-if
	// projections so a diff can be displayed. Empty on the canonical
	// leaderboard.
	OrigTotalPoints int `json:"__origTotalPoints,omitempty"`
}

// Name returns the best display identity for the user.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// LeaderboardEntry pairs a user with their server-assigned rank.
// A zero rank means the server did not assign one; it sorts after
// present ranks.
type LeaderboardEntry struct {
	Rank int  `json:"rank,omitempty"`
	User User `json:"user"`
}

// Leaderboard is the canonical in-memory leaderboard every derived
// view borrows. Consumers must not mutate it; the what-if simulator
// clones before projecting.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"leaderboard"`
	Season  *Season            `json:"season,omitempty"`
}

// Totals are the global aggregates over one leaderboard.
type Totals struct {
	TotalPlayers     int     `json:"total_players"`
	TotalPredictions int     `json:"total_predictions"`
	AvgAccuracy      float64 `json:"avg_accuracy"`
}
