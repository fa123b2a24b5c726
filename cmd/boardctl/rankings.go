package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/logger"
)

type rankingsCmd struct {
	SortBy string   `help:"Sort order: total, section or name." default:"total"`
	Query  string   `help:"Filter players by name substring."`
	Pin    []string `help:"User ids to pin to the front."`
	Top    int      `help:"Limit output to the first N rows." default:"20"`
}

func (cmd *rankingsCmd) Run(g *globalCmd) error {
	board, err := fetchBoard(g)
	if err != nil {
		return err
	}

	state := services.DefaultPresentationState("", g.Season)
	state.ShowAll = true
	state.Query = cmd.Query
	state.PinnedUserIDs = cmd.Pin
	state.VisibleCount = cmd.Top
	switch services.SortBy(cmd.SortBy) {
	case services.SortByTotal, services.SortBySection, services.SortByName:
		state.SortBy = services.SortBy(cmd.SortBy)
	default:
		return fmt.Errorf("unknown sort order %q", cmd.SortBy)
	}

	ordered := services.OrderEntries(board.Entries, state)
	paged, hasMore := services.Page(ordered, state.VisibleCount)
	view := services.BuildRankingsList(paged, nil, hasMore, services.ComputeTotals(board.Entries))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rank", "Player", "Total", "Standings", "Awards", "Props"})
	for _, row := range view.Rows {
		name := row.Name
		if pinnedContains(state.PinnedUserIDs, row.UserID) {
			name = "* " + name
		}
		t.AppendRow(table.Row{
			row.Rank,
			name,
			row.TotalPoints,
			barText(row.Bars, "standings"),
			barText(row.Bars, "awards"),
			barText(row.Bars, "props"),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d players", view.Totals.TotalPlayers), "",
		fmt.Sprintf("%d predictions", view.Totals.TotalPredictions), "",
		fmt.Sprintf("%.1f%% accuracy", view.Totals.AvgAccuracy*100)})
	t.SetStyle(table.StyleLight)
	t.Render()

	if view.HasMore {
		fmt.Printf("... and %d more (use --top to show more)\n", len(ordered)-len(view.Rows))
	}
	return nil
}

func barText(bars []services.CategoryBar, section string) string {
	for _, bar := range bars {
		if bar.Section == section {
			return fmt.Sprintf("%d/%d", bar.Points, bar.MaxPoints)
		}
	}
	return "-"
}

func pinnedContains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type seasonsCmd struct{}

func (cmd *seasonsCmd) Run(g *globalCmd) error {
	client := newClient(g)
	seasons, err := client.FetchSeasons(context.Background())
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Slug", "Year"})
	for _, s := range seasons {
		t.AppendRow(table.Row{s.Slug, s.Year})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func newClient(g *globalCmd) *providers.PredictionsClient {
	return providers.NewPredictionsClient(g.Upstream, g.Timeout, 10, 5, nil, 0, logger.GetLogger())
}

func fetchBoard(g *globalCmd) (*models.Leaderboard, error) {
	client := newClient(g)
	board, err := client.FetchLeaderboard(context.Background(), g.Season)
	if err != nil {
		return nil, err
	}
	if board.Season.Locked() {
		return nil, fmt.Errorf("season %s is locked until %s", g.Season,
			board.Season.SubmissionEndDate.Format("2006-01-02"))
	}
	return board, nil
}
