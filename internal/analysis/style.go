package analysis

import (
	"sort"
	"strings"

	"playerscout/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type statGroup struct {
	name  string
	stats []string
}

// styleGroups are the characteristic groups a playing style is read from, in tie-break order
var styleGroups = []statGroup{
	{"possession_play", []string{"Pass Completion %", "Progressive Passes", "Progressive Carries"}},
	{"attacking_threat", []string{"Non-Penalty Goals", "Shot-Creating Actions", "xAG: Exp. Assisted Goals"}},
	{"defensive_contribution", []string{"Tackles", "Interceptions", "Blocks"}},
}

type positionTrait struct {
	statGroup
	role string
}

var positionTraits = map[string][]positionTrait{
	BaseForward: {
		{statGroup{"finishing", []string{"Non-Penalty Goals", "npxG: Non-Penalty xG"}}, "Goal Poacher"},
		{statGroup{"creativity", []string{"Assists", "xAG: Exp. Assisted Goals", "Shot-Creating Actions"}}, "Creative Forward"},
		{statGroup{"movement", []string{"Progressive Passes Rec"}}, "Mobile Striker"},
	},
	BaseMidfielder: {
		{statGroup{"playmaking", []string{"Progressive Passes", "Assists", "xAG: Exp. Assisted Goals"}}, "Playmaker"},
		{statGroup{"ball_control", []string{"Pass Completion %", "Progressive Carries", "Successful Take-Ons"}}, "Technical Midfielder"},
		{statGroup{"work_rate", []string{"Shot-Creating Actions", "Tackles", "Interceptions"}}, "Box-to-Box Midfielder"},
	},
	BaseDefender: {
		{statGroup{"defending", []string{"Tackles", "Interceptions", "Blocks"}}, "No-Nonsense Defender"},
		{statGroup{"aerial_ability", []string{"Aerials Won", "Clearances"}}, "Aerial Specialist"},
		{statGroup{"build_up", []string{"Progressive Passes", "Pass Completion %"}}, "Ball-Playing Defender"},
	},
	BaseGoalkeeper: {
		{statGroup{"shot_stopping", []string{"Save Percentage", "Goals Against"}}, "Shot Stopper"},
		{statGroup{"distribution", []string{"Pass Completion %", "Passes Attempted"}}, "Sweeper Keeper"},
		{statGroup{"commanding", []string{"Crosses Stopped", "Clearances"}}, "Traditional Keeper"},
	},
}

var titleCaser = cases.Title(language.English)

// StyleName turns a characteristic key such as "possession_play" into "Possession Play"
func StyleName(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func playingStyle(report []models.ScoutingMetric, base string) models.PlayingStyle {
	type scored struct {
		name  string
		value float64
	}
	characteristics := make(map[string]float64, len(styleGroups))
	ranked := make([]scored, 0, len(styleGroups))
	for _, g := range styleGroups {
		mean, _ := meanPercentile(report, g.stats)
		characteristics[g.name] = mean
		ranked = append(ranked, scored{g.name, mean})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})

	return models.PlayingStyle{
		PrimaryStyle:           StyleName(ranked[0].name),
		SecondaryStyle:         StyleName(ranked[1].name),
		StyleCharacteristics:   characteristics,
		PositionSpecificTraits: traitsFor(report, base),
	}
}

func traitsFor(report []models.ScoutingMetric, base string) *models.PositionTraits {
	traits := positionTraits[base]
	out := &models.PositionTraits{KeyTraits: make(map[string]models.TraitScore)}

	type scored struct {
		trait positionTrait
		score int
	}
	var ranked []scored
	for _, t := range traits {
		mean, ok := meanPercentile(report, t.stats)
		if !ok {
			continue
		}
		score := roundHalfEven(mean)
		out.KeyTraits[t.name] = models.TraitScore{
			Score:      score,
			Level:      TraitLevel(mean),
			Percentile: score,
		}
		ranked = append(ranked, scored{t, score})
	}

	if len(ranked) == 0 {
		out.PositionRole = "Versatile Player"
		return out
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	out.PositionRole = ranked[0].trait.role
	if out.PositionRole == "" {
		out.PositionRole = "Complete Player"
	}
	return out
}

// TraitLevel describes a trait score
func TraitLevel(score float64) string {
	switch {
	case score >= 90:
		return "Elite"
	case score >= 80:
		return "Excellent"
	case score >= 70:
		return "Very Good"
	case score >= 60:
		return "Good"
	case score >= 50:
		return "Above Average"
	case score >= 40:
		return "Average"
	case score >= 30:
		return "Below Average"
	default:
		return "Developing"
	}
}

func sortRatedDesc(rated []models.RatedStat) {
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].WeightedScore > rated[j].WeightedScore
	})
}
