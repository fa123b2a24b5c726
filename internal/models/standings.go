package models

// Conference is one of the two league partitions.
type Conference string

const (
	ConferenceEast Conference = "East"
	ConferenceWest Conference = "West"
)

// Initial returns the single-letter prefix used in ordered-team ids.
func (c Conference) Initial() string {
	if c == ConferenceEast {
		return "E"
	}
	return "W"
}

// StandingsTeam is one team as derived from all users' standings
// predictions. ActualPosition is zero while the final standing is
// unknown.
type StandingsTeam struct {
	Team           string     `json:"team"`
	Conference     Conference `json:"conference"`
	ActualPosition int        `json:"actual_position,omitempty"`
}

// OrderedTeam is a StandingsTeam with a stable id, usable as a
// draggable row in the comparison grid.
type OrderedTeam struct {
	ID string `json:"id"`
	StandingsTeam
}

// NewOrderedTeam binds the stable "W-<team>" / "E-<team>" id.
func NewOrderedTeam(t StandingsTeam) OrderedTeam {
	return OrderedTeam{
		ID:            t.Conference.Initial() + "-" + t.Team,
		StandingsTeam: t,
	}
}

// Question is one deduplicated entry of the non-standings question set.
type Question struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsFinalized bool   `json:"is_finalized"`
}
