package services

import "github.com/hoopsight/hoopsight/internal/models"

// ComputeTotals derives the global aggregates over a normalized entry
// list. Accuracy is micro-averaged: correct and resolved predictions
// are summed across all users before dividing, rather than averaging
// per-user rates.
func ComputeTotals(entries []models.LeaderboardEntry) models.Totals {
	totals := models.Totals{TotalPlayers: len(entries)}

	correct := 0
	resolved := 0
	for _, entry := range entries {
		for _, cat := range entry.User.Categories {
			totals.TotalPredictions += len(cat.Predictions)
			for _, p := range cat.Predictions {
				if !p.Resolved() {
					continue
				}
				resolved++
				if *p.Correct {
					correct++
				}
			}
		}
	}

	if resolved > 0 {
		totals.AvgAccuracy = float64(correct) / float64(resolved)
	}
	return totals
}
