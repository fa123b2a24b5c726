package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/services"
)

type gridCmd struct {
	Section string   `help:"Section to render: standings, awards or props." default:"standings"`
	Users   []string `help:"User ids to compare; all users when empty."`
	Pin     []string `help:"User ids to pin."`
	WhatIf  bool     `help:"Enable what-if reordering."`
	Swap    []string `help:"What-if drags as CONF:FROM:TO (e.g. W:2:5), applied in order."`
}

func (cmd *gridCmd) Run(g *globalCmd) error {
	board, err := fetchBoard(g)
	if err != nil {
		return err
	}

	section, ok := models.ParseSection(cmd.Section)
	if !ok {
		return fmt.Errorf("unknown section %q", cmd.Section)
	}

	state := services.DefaultPresentationState("", g.Season)
	state.Section = section
	state.WhatIfEnabled = cmd.WhatIf
	state.PinnedUserIDs = cmd.Pin
	if len(cmd.Users) > 0 {
		state.SelectedUserIDs = cmd.Users
	} else {
		state.ShowAll = true
	}

	entries := board.Entries
	teams := services.BuildStandingsIndex(board.Entries)
	var questions []models.Question
	var simMap map[string]int

	if section == models.CategoryStandings && len(cmd.Swap) > 0 {
		drafts := services.NewDrafts(teams)
		if err := applySwaps(drafts, cmd.Swap, state.EffectiveWhatIf()); err != nil {
			return err
		}
		entries = services.ProjectLeaderboard(board.Entries, drafts)
		teams = append(append([]models.OrderedTeam{}, drafts.West...), drafts.East...)
		simMap = drafts.SimulationMap()
	}
	if section != models.CategoryStandings {
		questions = services.BuildQuestionIndex(board.Entries, section)
	}

	ordered := services.OrderEntries(entries, state)
	grid := services.BuildComparisonGrid(ordered, state, teams, questions, simMap)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	header := table.Row{rowLabel(section)}
	for _, col := range grid.Columns {
		name := col.Name
		if col.Pinned {
			name = "* " + name
		}
		header = append(header, fmt.Sprintf("%s (%d)", name, col.TotalPoints))
	}
	t.AppendHeader(header)

	for _, row := range grid.Rows {
		cells := table.Row{rowHeader(row)}
		for _, cell := range row.Cells {
			cells = append(cells, cellText(cell))
		}
		t.AppendRow(cells)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func rowLabel(section models.CategoryKey) string {
	if section == models.CategoryStandings {
		return "Team"
	}
	return "Question"
}

func rowHeader(row services.GridRow) string {
	if row.Team != "" {
		return fmt.Sprintf("%s%d %s", row.Conference.Initial(), row.Position, row.Team)
	}
	return row.Question
}

func cellText(cell services.GridCell) string {
	if cell.Answer != "" {
		marker := ""
		switch cell.Class {
		case services.CellCorrect:
			marker = " +"
		case services.CellIncorrect:
			marker = " -"
		}
		return cell.Answer + marker
	}
	if cell.Predicted == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d (%dpt)", cell.Predicted, cell.Points)
}

// applySwaps applies the drags in order, rejecting positions outside
// the target conference's draft so a typo is an error rather than a
// silent no-op.
func applySwaps(drafts *services.Drafts, swaps []string, enabled bool) error {
	for _, swap := range swaps {
		conf, from, to, err := parseSwap(swap)
		if err != nil {
			return err
		}

		order := drafts.West
		if conf == models.ConferenceEast {
			order = drafts.East
		}
		if from < 0 || from >= len(order) || to < 0 || to >= len(order) {
			return fmt.Errorf("swap %s: position out of range (1-%d)", swap, len(order))
		}

		if err := drafts.ApplyDrag(conf, from, to, enabled); err != nil {
			return fmt.Errorf("swap %s: %w", swap, err)
		}
	}
	return nil
}

// parseSwap parses CONF:FROM:TO with 1-based positions.
func parseSwap(raw string) (models.Conference, int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid swap %q, expected CONF:FROM:TO", raw)
	}

	var conf models.Conference
	switch strings.ToUpper(parts[0]) {
	case "W", "WEST":
		conf = models.ConferenceWest
	case "E", "EAST":
		conf = models.ConferenceEast
	default:
		return "", 0, 0, fmt.Errorf("invalid conference %q", parts[0])
	}

	from, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid from position %q", parts[1])
	}
	to, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid to position %q", parts[2])
	}
	return conf, from - 1, to - 1, nil
}
