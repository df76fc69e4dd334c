package view

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"playerscout/internal/search"
	"playerscout/models"
)

const barCells = 20

// TextBar draws a fill width (0-100) as a fixed-width block bar
func TextBar(width float64) string {
	filled := int(math.Round(width / 100 * barCells))
	if filled < 0 {
		filled = 0
	}
	if filled > barCells {
		filled = barCells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

// RenderText writes a terminal rendering of the view
func RenderText(w io.Writer, v PlayerView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(tw, format, args...)
	}

	switch v.Status {
	case search.StatusIdle:
		p("No search yet.\n")
		return tw.Flush()
	case search.StatusPending:
		p("Searching for %q...\n", v.Query)
		return tw.Flush()
	case search.StatusFailed:
		p("Search for %q failed: %s\n", v.Query, v.Error)
		return tw.Flush()
	}

	if v.Player != nil {
		info := v.Player
		p("%s\n", info.Name)
		p("Age:\t%d\n", info.Age)
		p("Club:\t%s\n", info.Club)
		p("Position:\t%s\n", info.Position)
		p("National Team:\t%s\n", info.NationalTeam)
	}

	for _, card := range v.Leagues {
		p("\n%s\n", card.League)
		p("Matches\t90s\tGoals\txG\tAssists\txA\tSCA\tGCA\n")
		p("%d\t%d\t%d\t%.1f\t%d\t%.1f\t%d\t%d\n",
			card.Matches, card.Nineties, card.Goals, card.ExpectedGoals,
			card.Assists, card.ExpectedAssists, card.ShotCreatingActions, card.GoalCreatingActions)
	}

	for _, section := range v.Sections {
		p("\n%s\n", section.Title)
		for _, bar := range section.Bars {
			if !bar.Found {
				p("  %s\t-\t%s\t\n", bar.Stat, TextBar(0))
				continue
			}
			p("  %s\t%.2f\t%s\t%.0f\n", bar.Stat, bar.Per90, TextBar(bar.Width), bar.Percentile)
		}
	}

	if o := v.Overview; o != nil {
		p("\nAnalysis\n")
		p("Overall rating:\t%d/100\n", o.OverallRating)
		if o.PotentialRating > 0 {
			p("Potential:\t%d/100\n", o.PotentialRating)
		}
		if o.Role != "" {
			p("Role:\t%s\n", o.Role)
		}
		p("Style:\t%s / %s\n", o.PrimaryStyle, o.SecondaryStyle)
		for _, c := range o.Categories {
			p("  %s\t%s\t%d\n", c.Title, TextBar(c.Width), c.Score)
		}
		if len(o.Strengths) > 0 {
			p("Strengths:\t%s\n", joinStats(o.Strengths))
		}
		if len(o.Weaknesses) > 0 {
			p("Weaknesses:\t%s\n", joinStats(o.Weaknesses))
		}
		p("Development:\t%s\n", o.Timeframe)
		p("\n%s\n", o.Summary)
	} else if v.Analysis == search.AnalysisRevealing {
		p("\nPreparing analysis...\n")
	}

	return tw.Flush()
}

func joinStats(items []models.RatedStat) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Stat
	}
	return strings.Join(names, ", ")
}
