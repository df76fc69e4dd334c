package models

import (
	"encoding/json"
	"math"
	"sort"
)

// GeneralInfo holds the identity block shown at the top of a player profile
type GeneralInfo struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Club         string `json:"club"`
	Position     string `json:"position"`
	NationalTeam string `json:"national_team"`
	PhotoURL     string `json:"photo_url"`
}

// LeagueStats is one competition's line in the current season summary.
// Counting stats arrive either as JSON numbers or as numeric strings.
type LeagueStats struct {
	Matches             Number `json:"matches"`
	Minutes             Number `json:"minutes"`
	Goals               Number `json:"goals"`
	ExpectedGoals       Number `json:"expected_goals"`
	NonPenaltyXG        Number `json:"non_penalty_xg,omitempty"`
	Assists             Number `json:"assists"`
	ExpectedAssists     Number `json:"expected_assists"`
	ShotCreatingActions Number `json:"shot_creating_actions"`
	GoalCreatingActions Number `json:"goal_creating_actions"`
}

// Nineties returns minutes expressed as full-match equivalents, rounded
func (s LeagueStats) Nineties() int {
	return int(math.Round(float64(s.Minutes) / 90))
}

// ScoutingMetric is a single per-90 stat with its percentile rank against positional peers
type ScoutingMetric struct {
	Stat       string  `json:"stat"`
	Per90      float64 `json:"per_90"`
	Percentile float64 `json:"percentile"`
}

// UnmarshalJSON accepts per_90 and percentile as numbers or numeric strings
func (m *ScoutingMetric) UnmarshalJSON(data []byte) error {
	var raw struct {
		Stat       string `json:"stat"`
		Per90      Number `json:"per_90"`
		Percentile Number `json:"percentile"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ScoutingMetric{
		Stat:       raw.Stat,
		Per90:      float64(raw.Per90),
		Percentile: float64(raw.Percentile),
	}
	return nil
}

// PlayerRecord is the payload returned by a successful player lookup
type PlayerRecord struct {
	GeneralInfo        GeneralInfo            `json:"general_info"`
	CurrentSeasonStats map[string]LeagueStats `json:"current_season_stats"`
	ScoutingReport     []ScoutingMetric       `json:"scouting_report"`
	PlayerOverview     *PlayerOverview        `json:"player_overview,omitempty"`
}

// HasOverview reports whether the record can back an analysis reveal
func (r *PlayerRecord) HasOverview() bool {
	return r != nil && r.PlayerOverview != nil
}

// LeagueNames returns the competitions in the season summary in stable display order
func (r *PlayerRecord) LeagueNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.CurrentSeasonStats))
	for name := range r.CurrentSeasonStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchResponse is the envelope of GET /api/player/search
type SearchResponse struct {
	Success bool          `json:"success"`
	Data    *PlayerRecord `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}
