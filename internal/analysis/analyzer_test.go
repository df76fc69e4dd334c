package analysis

import (
	"context"
	"path/filepath"
	"testing"

	"playerscout/adapters/fixtures"
	"playerscout/domain/scouting"
	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *models.PlayerRecord {
	t.Helper()
	store, err := fixtures.LoadDir(filepath.Join("..", "..", "fixtures"))
	require.NoError(t, err)
	record, err := store.FindByName(context.Background(), name)
	require.NoError(t, err)
	return record
}

func statNames(rated []models.RatedStat) []string {
	names := make([]string, len(rated))
	for i, r := range rated {
		names[i] = r.Stat
	}
	return names
}

func TestAnalyze_Midfielder(t *testing.T) {
	overview, err := NewAnalyzer(nil).Analyze(loadFixture(t, "Riqui Puig"))
	require.NoError(t, err)

	assert.Equal(t, 86, overview.OverallRating)
	assert.Equal(t,
		"Riqui Puig is a peak-age MF (CM) currently rated at 86/100. Their strongest aspect is attacking (81/100), with a playing style primarily focused on possession play. They also show good capabilities in attacking threat.",
		overview.Summary)

	profile := overview.PerformanceProfile
	assert.Equal(t, models.CategoryScore{Score: 81, Weight: 0.35, Contribution: 28.31}, profile.CategoryScores["attacking"])
	assert.Equal(t, models.CategoryScore{Score: 81, Weight: 0.45, Contribution: 36.39}, profile.CategoryScores["possession"])
	assert.Equal(t, models.CategoryScore{Score: 26, Weight: 0.2, Contribution: 5.21}, profile.CategoryScores["defensive"])

	assert.Equal(t, []string{"Passes Attempted", "Progressive Passes", "Pass Completion %"}, statNames(profile.KeyStrengths))
	assert.Equal(t, []string{"Interceptions", "Clearances", "Aerials Won"}, statNames(profile.AreasForImprovement))

	style := profile.PlayingStyle
	assert.Equal(t, "Possession Play", style.PrimaryStyle)
	assert.Equal(t, "Attacking Threat", style.SecondaryStyle)
	assert.InDelta(t, 90.0, style.StyleCharacteristics["possession_play"], 1e-9)
	assert.InDelta(t, 36.0, style.StyleCharacteristics["defensive_contribution"], 1e-9)

	require.NotNil(t, style.PositionSpecificTraits)
	assert.Equal(t, "Playmaker", style.PositionSpecificTraits.PositionRole)
	assert.Equal(t, models.TraitScore{Score: 95, Level: "Elite", Percentile: 95}, style.PositionSpecificTraits.KeyTraits["playmaking"])
	assert.Equal(t, models.TraitScore{Score: 51, Level: "Above Average", Percentile: 51}, style.PositionSpecificTraits.KeyTraits["work_rate"])

	dev := overview.DevelopmentAnalysis
	assert.Equal(t, "Short-term (1-2 years for refinements)", dev.DevelopmentTimeframe)
	require.Len(t, dev.TrainingRecommendations, 3)
	assert.Equal(t, models.TrainingRecommendation{
		FocusArea: "Clearances", Priority: PriorityCritical, CurrentLevel: 18, TargetLevel: 38, Timeframe: "Short-term",
	}, dev.TrainingRecommendations[0])
	assert.Equal(t, "Aerials Won", dev.TrainingRecommendations[1].FocusArea)
	assert.Equal(t, models.TrainingRecommendation{
		FocusArea: "Interceptions", Priority: PriorityImportant, CurrentLevel: 29, TargetLevel: 49, Timeframe: "Medium-term",
	}, dev.TrainingRecommendations[2])

	require.NotNil(t, overview.Potential)
	assert.Equal(t, 86, overview.Potential.CurrentRating)
	assert.Equal(t, 88, overview.Potential.PotentialRating)
}

func TestAnalyze_ForwardWithHybridPosition(t *testing.T) {
	overview, err := NewAnalyzer(nil).Analyze(loadFixture(t, "Messi"))
	require.NoError(t, err)

	assert.Equal(t, 99, overview.OverallRating)
	assert.Contains(t, overview.Summary, "Lionel Messi is a experienced FW-MF (AM, right) currently rated at 99/100.")
	assert.Contains(t, overview.Summary, "strongest aspect is attacking (99/100)")

	profile := overview.PerformanceProfile
	assert.Equal(t, 0.5, profile.CategoryScores["attacking"].Weight)
	assert.Equal(t, 49.27, profile.CategoryScores["attacking"].Contribution)
	assert.Equal(t, 7, profile.CategoryScores["defensive"].Score)
	assert.Equal(t, []string{"Non-Penalty Goals", "Assists", "xAG: Exp. Assisted Goals"}, statNames(profile.KeyStrengths))
	assert.Equal(t, []string{"Blocks", "Tackles", "Interceptions"}, statNames(profile.AreasForImprovement))
	assert.Equal(t, "Creative Forward", profile.PlayingStyle.PositionSpecificTraits.PositionRole)

	// Every weakness feeds the plan, not only the three listed.
	dev := overview.DevelopmentAnalysis
	assert.Equal(t, "Maintenance phase", dev.DevelopmentTimeframe)
	assert.Len(t, dev.TrainingRecommendations, 5)
	assert.Len(t, dev.PriorityAreas.Critical, 5)
	assert.Equal(t, 99, overview.Potential.PotentialRating)
}

func TestAnalyze_Defenders(t *testing.T) {
	tests := []struct {
		name       string
		rating     int
		potential  int
		role       string
		strengths  []string
		weaknesses []string
	}{
		{"Walker Zimmerman", 73, 73, "Aerial Specialist", []string{"Aerials Won", "Clearances", "Blocks"}, []string{"Assists"}},
		{"Miles Robinson", 71, 74, "Aerial Specialist", []string{"Aerials Won", "Clearances"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overview, err := NewAnalyzer(nil).Analyze(loadFixture(t, tt.name))
			require.NoError(t, err)

			profile := overview.PerformanceProfile
			assert.Equal(t, tt.rating, overview.OverallRating)
			assert.Equal(t, tt.potential, overview.Potential.PotentialRating)
			assert.Equal(t, tt.role, profile.PlayingStyle.PositionSpecificTraits.PositionRole)
			assert.Equal(t, tt.strengths, statNames(profile.KeyStrengths))
			if tt.weaknesses == nil {
				assert.Empty(t, profile.AreasForImprovement)
			} else {
				assert.Equal(t, tt.weaknesses, statNames(profile.AreasForImprovement))
			}
			assert.Equal(t, "Defensive Contribution", profile.PlayingStyle.PrimaryStyle)
		})
	}
}

func TestAnalyze_RejectsUnanalyzableRecords(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	_, err := analyzer.Analyze(nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = analyzer.Analyze(&models.PlayerRecord{
		GeneralInfo:    models.GeneralInfo{Name: "Unknown Age", Position: "MF"},
		ScoutingReport: []models.ScoutingMetric{{Stat: "Tackles", Percentile: 50}},
	})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = analyzer.Analyze(&models.PlayerRecord{
		GeneralInfo:    models.GeneralInfo{Name: "No Stats", Age: 22, Position: "MF"},
		ScoutingReport: []models.ScoutingMetric{{Stat: "Touches (Att Pen)", Percentile: 50}},
	})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestPositionBase(t *testing.T) {
	tests := map[string]string{
		"FW-MF (AM, right)": BaseForward,
		"MF (CM)":           BaseMidfielder,
		"DF (CB)":           BaseDefender,
		"gk":                BaseGoalkeeper,
		"":                  BaseMidfielder,
		"Sweeper":           BaseMidfielder,
	}
	for position, want := range tests {
		assert.Equal(t, want, PositionBase(position), position)
	}
}

func TestOverallRating_Bounds(t *testing.T) {
	weights := DefaultPositionWeights[BaseMidfielder]
	low := categoryScores{
		{category: scouting.CategoryAttacking, score: 5, weight: 0.35},
		{category: scouting.CategoryPossession, score: 5, weight: 0.45},
	}
	assert.Equal(t, 50, overallRating(low, weights))
	assert.Equal(t, 75, overallRating(nil, weights))

	high := categoryScores{
		{category: scouting.CategoryAttacking, score: 95, weight: 0.35},
		{category: scouting.CategoryPossession, score: 95, weight: 0.45},
	}
	assert.Equal(t, 99, overallRating(high, weights))
}

func TestPriorityAndLevels(t *testing.T) {
	assert.Equal(t, PriorityCritical, PriorityOf(19.9))
	assert.Equal(t, PriorityImportant, PriorityOf(20))
	assert.Equal(t, PrioritySupplementary, PriorityOf(30))

	assert.Equal(t, "Elite", TraitLevel(90))
	assert.Equal(t, "Good", TraitLevel(69.9))
	assert.Equal(t, "Developing", TraitLevel(12))

	assert.Equal(t, "Long-term (3-5 years for full potential)", DevelopmentTimeframe(18))
	assert.Equal(t, "Medium-term (2-3 years for peak performance)", DevelopmentTimeframe(23))
}

func TestPotential_YoungLowRatedPlayer(t *testing.T) {
	scores := categoryScores{{category: scouting.CategoryAttacking, score: 60}}
	dev := models.DevelopmentAnalysis{DevelopmentTimeframe: DevelopmentTimeframe(18)}

	// 15 * 1.2 = 18 on top of 60
	p := potential(60, 18, scores, dev)
	assert.Equal(t, 78, p.PotentialRating)
	assert.Equal(t, dev.DevelopmentTimeframe, p.DevelopmentTimeframe)
}

func TestStyleName(t *testing.T) {
	assert.Equal(t, "Possession Play", StyleName("possession_play"))
	assert.Equal(t, "Defensive Contribution", StyleName("defensive_contribution"))
}
