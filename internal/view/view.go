// Package view turns a workflow snapshot into the data a page or terminal renders.
package view

import (
	"sort"

	"playerscout/domain/scouting"
	"playerscout/internal/search"
	"playerscout/models"
)

// LeagueCard is one competition in the current season summary
type LeagueCard struct {
	League              string  `json:"league"`
	Matches             int     `json:"matches"`
	Minutes             int     `json:"minutes"`
	Nineties            int     `json:"nineties"`
	Goals               int     `json:"goals"`
	ExpectedGoals       float64 `json:"expected_goals"`
	Assists             int     `json:"assists"`
	ExpectedAssists     float64 `json:"expected_assists"`
	ShotCreatingActions int     `json:"shot_creating_actions"`
	GoalCreatingActions int     `json:"goal_creating_actions"`
}

// SectionView is a categorized scouting section ready to draw
type SectionView struct {
	Category scouting.Category `json:"category"`
	Title    string            `json:"title"`
	Bars     []Bar             `json:"bars"`
}

// Bar is one stat row with its fill width
type Bar struct {
	Stat       string  `json:"stat"`
	Per90      float64 `json:"per_90"`
	Percentile float64 `json:"percentile"`
	Width      float64 `json:"width"`
	Found      bool    `json:"found"`
}

// ReportLine is a row of the flat scouting list, styled by its label
type ReportLine struct {
	Stat       string            `json:"stat"`
	Per90      float64           `json:"per_90"`
	Percentile float64           `json:"percentile"`
	Class      scouting.Category `json:"class"`
}

// AnalysisView is the disclosed overview
type AnalysisView struct {
	OverallRating   int                             `json:"overall_rating"`
	PotentialRating int                             `json:"potential_rating,omitempty"`
	Summary         string                          `json:"summary"`
	Categories      []CategoryScoreView             `json:"categories"`
	Strengths       []models.RatedStat              `json:"strengths"`
	Weaknesses      []models.RatedStat              `json:"weaknesses"`
	PrimaryStyle    string                          `json:"primary_style"`
	SecondaryStyle  string                          `json:"secondary_style"`
	Role            string                          `json:"role,omitempty"`
	Timeframe       string                          `json:"timeframe"`
	Recommendations []models.TrainingRecommendation `json:"recommendations"`
}

// CategoryScoreView is a category score in taxonomy order
type CategoryScoreView struct {
	Category scouting.Category `json:"category"`
	Title    string            `json:"title"`
	Score    int               `json:"score"`
	Width    float64           `json:"width"`
}

// PlayerView is everything a surface needs to draw one session
type PlayerView struct {
	Status   search.Status        `json:"status"`
	Query    string               `json:"query,omitempty"`
	Error    string               `json:"error,omitempty"`
	Analysis search.AnalysisState `json:"analysis"`

	Player   *models.GeneralInfo `json:"player,omitempty"`
	Leagues  []LeagueCard        `json:"leagues,omitempty"`
	Sections []SectionView       `json:"sections,omitempty"`
	Report   []ReportLine        `json:"report,omitempty"`
	Overview *AnalysisView       `json:"overview,omitempty"`

	CanSubmit  bool `json:"can_submit"`
	CanClear   bool `json:"can_clear"`
	CanAnalyze bool `json:"can_analyze"`
}

// Build derives the view for a snapshot. The categorized report is computed here on
// every call and never stored.
func Build(snap search.Snapshot, taxonomy scouting.Taxonomy) PlayerView {
	v := PlayerView{
		Status:   snap.Status,
		Query:    snap.Query,
		Error:    snap.Error,
		Analysis: snap.Analysis,
	}

	pending := snap.Pending()
	v.CanSubmit = !pending
	v.CanClear = !pending && (snap.Query != "" || snap.Record != nil || snap.Error != "")
	v.CanAnalyze = snap.CanReveal() && snap.Analysis == search.AnalysisNotRequested

	if snap.Status != search.StatusSucceeded || snap.Record == nil {
		return v
	}

	record := snap.Record
	info := record.GeneralInfo
	v.Player = &info
	v.Leagues = leagueCards(record)
	v.Sections = sections(scouting.Categorize(record.ScoutingReport, taxonomy))
	v.Report = reportLines(record.ScoutingReport)

	if snap.AnalysisVisible() {
		v.Overview = analysisView(record.PlayerOverview, taxonomy)
	}
	return v
}

func leagueCards(record *models.PlayerRecord) []LeagueCard {
	names := record.LeagueNames()
	cards := make([]LeagueCard, 0, len(names))
	for _, name := range names {
		s := record.CurrentSeasonStats[name]
		cards = append(cards, LeagueCard{
			League:              name,
			Matches:             s.Matches.Int(),
			Minutes:             s.Minutes.Int(),
			Nineties:            s.Nineties(),
			Goals:               s.Goals.Int(),
			ExpectedGoals:       float64(s.ExpectedGoals),
			Assists:             s.Assists.Int(),
			ExpectedAssists:     float64(s.ExpectedAssists),
			ShotCreatingActions: s.ShotCreatingActions.Int(),
			GoalCreatingActions: s.GoalCreatingActions.Int(),
		})
	}
	return cards
}

func sections(report scouting.CategorizedReport) []SectionView {
	out := make([]SectionView, 0, len(report.Sections))
	for _, section := range report.Sections {
		sv := SectionView{Category: section.Category, Title: section.Title}
		for _, slot := range section.Slots {
			sv.Bars = append(sv.Bars, Bar{
				Stat:       slot.Stat,
				Per90:      slot.Per90,
				Percentile: slot.Percentile,
				Width:      slot.BarWidth(),
				Found:      slot.Found,
			})
		}
		out = append(out, sv)
	}
	return out
}

func reportLines(metrics []models.ScoutingMetric) []ReportLine {
	lines := make([]ReportLine, 0, len(metrics))
	for _, m := range metrics {
		lines = append(lines, ReportLine{
			Stat:       m.Stat,
			Per90:      m.Per90,
			Percentile: m.Percentile,
			Class:      scouting.ClassifyLabel(m.Stat),
		})
	}
	return lines
}

func analysisView(overview *models.PlayerOverview, taxonomy scouting.Taxonomy) *AnalysisView {
	profile := overview.PerformanceProfile
	av := &AnalysisView{
		OverallRating:   overview.OverallRating,
		Summary:         overview.Summary,
		Strengths:       profile.KeyStrengths,
		Weaknesses:      profile.AreasForImprovement,
		PrimaryStyle:    profile.PlayingStyle.PrimaryStyle,
		SecondaryStyle:  profile.PlayingStyle.SecondaryStyle,
		Timeframe:       overview.DevelopmentAnalysis.DevelopmentTimeframe,
		Recommendations: overview.DevelopmentAnalysis.TrainingRecommendations,
	}
	if overview.Potential != nil {
		av.PotentialRating = overview.Potential.PotentialRating
	}
	if traits := profile.PlayingStyle.PositionSpecificTraits; traits != nil {
		av.Role = traits.PositionRole
	}

	// Known categories first in taxonomy order, anything else after by name.
	seen := make(map[string]bool, len(profile.CategoryScores))
	for _, spec := range taxonomy {
		if cs, ok := profile.CategoryScores[string(spec.Category)]; ok {
			av.Categories = append(av.Categories, categoryScoreView(spec.Category, cs))
			seen[string(spec.Category)] = true
		}
	}
	var extra []string
	for name := range profile.CategoryScores {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		av.Categories = append(av.Categories, categoryScoreView(scouting.Category(name), profile.CategoryScores[name]))
	}
	return av
}

func categoryScoreView(c scouting.Category, cs models.CategoryScore) CategoryScoreView {
	title := c.Title()
	if title == "Other" && c != scouting.CategoryNone {
		title = string(c)
	}
	return CategoryScoreView{
		Category: c,
		Title:    title,
		Score:    cs.Score,
		Width:    scouting.BarWidth(float64(cs.Score)),
	}
}
