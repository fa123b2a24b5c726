package models

import "time"

// Season describes one prediction season as reported by the backend.
type Season struct {
	Slug                string     `json:"slug"`
	SubmissionStartDate *time.Time `json:"submission_start_date,omitempty"`
	SubmissionEndDate   *time.Time `json:"submission_end_date,omitempty"`
	SubmissionsOpen     bool       `json:"submissions_open"`
}

// CanEdit reports whether predictions may still be edited at now.
// Requires both window dates to be present.
func (s *Season) CanEdit(now time.Time) bool {
	if s == nil || s.SubmissionStartDate == nil || s.SubmissionEndDate == nil {
		return false
	}
	return !now.Before(*s.SubmissionStartDate) && !now.After(*s.SubmissionEndDate)
}

// Locked reports whether the leaderboard should be hidden behind a
// "locked until" panel: submissions are still open and an end date
// exists. This is intentional, not an error.
func (s *Season) Locked() bool {
	return s != nil && s.SubmissionsOpen && s.SubmissionEndDate != nil
}

// SeasonRef is one element of the participated-seasons picker list.
type SeasonRef struct {
	Slug string `json:"slug"`
	Year int    `json:"year"`
}
