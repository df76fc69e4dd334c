package analysis

import (
	"fmt"
	"log"
	"math"
	"strings"

	"playerscout/domain/scouting"
	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/montanaflynn/stats"
)

// Position bases used to weight categories and pick trait tables
const (
	BaseForward    = "FW"
	BaseMidfielder = "MF"
	BaseDefender   = "DF"
	BaseGoalkeeper = "GK"
)

// DefaultKeyStatWeights boosts the stats that define a category
var DefaultKeyStatWeights = map[string]float64{
	"Pass Completion %":     1.3,
	"Progressive Passes":    1.3,
	"Progressive Carries":   1.2,
	"Shot-Creating Actions": 1.2,
	"Assists":               1.2,
	"Non-Penalty Goals":     1.2,
	"Tackles":               1.1,
	"Interceptions":         1.1,
	"Aerials Won":           1.1,
}

// DefaultPositionWeights maps a position base to per-category weights
var DefaultPositionWeights = map[string]map[scouting.Category]float64{
	BaseForward:    {scouting.CategoryAttacking: 0.5, scouting.CategoryPossession: 0.35, scouting.CategoryDefensive: 0.15},
	BaseMidfielder: {scouting.CategoryAttacking: 0.35, scouting.CategoryPossession: 0.45, scouting.CategoryDefensive: 0.2},
	BaseDefender:   {scouting.CategoryAttacking: 0.15, scouting.CategoryPossession: 0.4, scouting.CategoryDefensive: 0.45},
	BaseGoalkeeper: {scouting.CategoryAttacking: 0.05, scouting.CategoryPossession: 0.35, scouting.CategoryDefensive: 0.6},
}

// Analyzer derives a PlayerOverview from a record's general info and scouting report
type Analyzer struct {
	taxonomy        scouting.Taxonomy
	keyStatWeights  map[string]float64
	positionWeights map[string]map[scouting.Category]float64
}

// NewAnalyzer creates an analyzer over the given taxonomy
func NewAnalyzer(taxonomy scouting.Taxonomy) *Analyzer {
	if len(taxonomy) == 0 {
		taxonomy = scouting.DefaultTaxonomy
	}
	return &Analyzer{
		taxonomy:        taxonomy,
		keyStatWeights:  DefaultKeyStatWeights,
		positionWeights: DefaultPositionWeights,
	}
}

// Analyze builds the overview. Records without any categorized stat or without an age
// cannot be analyzed and return a validation error.
func (a *Analyzer) Analyze(record *models.PlayerRecord) (*models.PlayerOverview, error) {
	if record == nil {
		return nil, errors.InvalidInput("player record is required")
	}
	info := record.GeneralInfo
	if info.Age <= 0 {
		return nil, errors.ValidationError(fmt.Sprintf("cannot analyze %q: age is unknown", info.Name))
	}

	base := PositionBase(info.Position)
	weights := a.weightsFor(base)

	scores := a.categoryScores(record.ScoutingReport, weights)
	if len(scores) == 0 {
		return nil, errors.ValidationError(fmt.Sprintf("cannot analyze %q: no categorized scouting stats", info.Name))
	}

	strengths, weaknesses := a.rankStats(record.ScoutingReport, weights)
	rating := overallRating(scores, weights)
	style := playingStyle(record.ScoutingReport, base)
	development := developmentAnalysis(weaknesses, info.Age)

	overview := &models.PlayerOverview{
		OverallRating: rating,
		PerformanceProfile: models.PerformanceProfile{
			CategoryScores:      scores.asMap(),
			KeyStrengths:        topN(strengths, 3),
			AreasForImprovement: topN(weaknesses, 3),
			PlayingStyle:        style,
		},
		DevelopmentAnalysis: development,
		Potential:           potential(rating, info.Age, scores, development),
	}
	overview.Summary = summary(info, rating, scores, style)

	log.Printf("[Analyzer] %s: base=%s rating=%d role=%s", info.Name, base, rating, style.PositionSpecificTraits.PositionRole)
	return overview, nil
}

func (a *Analyzer) weightsFor(base string) map[scouting.Category]float64 {
	if w, ok := a.positionWeights[base]; ok {
		return w
	}
	return a.positionWeights[BaseMidfielder]
}

// PositionBase reduces a listed position such as "FW-MF (AM, right)" to FW, MF, DF or GK.
// Forward markers are checked first, unknown positions default to MF.
func PositionBase(position string) string {
	upper := strings.ToUpper(position)
	bases := []struct {
		base    string
		markers []string
	}{
		{BaseForward, []string{"FW", "ST", "CF", "LW", "RW"}},
		{BaseMidfielder, []string{"MF", "CM", "DM", "AM"}},
		{BaseDefender, []string{"DF", "CB", "LB", "RB"}},
		{BaseGoalkeeper, []string{"GK"}},
	}
	for _, b := range bases {
		for _, m := range b.markers {
			if strings.Contains(upper, m) {
				return b.base
			}
		}
	}
	return BaseMidfielder
}

type categoryScore struct {
	category     scouting.Category
	score        int
	weight       float64
	contribution float64
}

type categoryScores []categoryScore

func (s categoryScores) asMap() map[string]models.CategoryScore {
	out := make(map[string]models.CategoryScore, len(s))
	for _, c := range s {
		out[string(c.category)] = models.CategoryScore{
			Score:        c.score,
			Weight:       c.weight,
			Contribution: c.contribution,
		}
	}
	return out
}

func (s categoryScores) get(c scouting.Category) (categoryScore, bool) {
	for _, cs := range s {
		if cs.category == c {
			return cs, true
		}
	}
	return categoryScore{}, false
}

// best returns the highest scoring category, the earliest on ties
func (s categoryScores) best() categoryScore {
	best := s[0]
	for _, cs := range s[1:] {
		if cs.score > best.score {
			best = cs
		}
	}
	return best
}

// categoryScores computes one score per category that has at least one stat in the report.
// Every occurrence of a stat counts, weighted by its key-stat weight.
func (a *Analyzer) categoryScores(report []models.ScoutingMetric, weights map[scouting.Category]float64) categoryScores {
	var out categoryScores
	for _, spec := range a.taxonomy {
		members := make(map[string]bool, len(spec.Stats))
		for _, s := range spec.Stats {
			members[s] = true
		}

		var weighted, total float64
		for _, m := range report {
			if !members[m.Stat] {
				continue
			}
			w := a.keyStatWeight(m.Stat)
			weighted += m.Percentile * w
			total += w
		}
		if total == 0 {
			continue
		}

		score := weighted / total
		pw := weights[spec.Category]
		out = append(out, categoryScore{
			category:     spec.Category,
			score:        roundHalfEven(score),
			weight:       pw,
			contribution: round2(score * pw),
		})
	}
	return out
}

func (a *Analyzer) keyStatWeight(stat string) float64 {
	if w, ok := a.keyStatWeights[stat]; ok {
		return w
	}
	return 1.0
}

// rankStats orders categorized stats by percentile times position weight and splits
// out strengths (percentile >= 75) and weaknesses (percentile <= 35).
func (a *Analyzer) rankStats(report []models.ScoutingMetric, weights map[scouting.Category]float64) (strengths, weaknesses []models.RatedStat) {
	var rated []models.RatedStat
	for _, m := range report {
		category := a.taxonomy.CategoryOf(m.Stat)
		if category == scouting.CategoryNone {
			continue
		}
		rated = append(rated, models.RatedStat{
			Stat:          m.Stat,
			Value:         m.Per90,
			Percentile:    m.Percentile,
			WeightedScore: m.Percentile * weights[category],
			Category:      string(category),
		})
	}
	sortRatedDesc(rated)

	for _, r := range rated {
		if r.Percentile >= 75 {
			strengths = append(strengths, r)
		}
		if r.Percentile <= 35 {
			weaknesses = append(weaknesses, r)
		}
	}
	return strengths, weaknesses
}

func overallRating(scores categoryScores, weights map[scouting.Category]float64) int {
	if len(scores) == 0 {
		return 75
	}

	var weighted, total float64
	for _, cs := range scores {
		w := cs.weight * weights[cs.category]
		weighted += float64(cs.score) * w
		total += w
	}
	base := 70.0
	if total > 0 {
		base = weighted / total
	}

	bonus := 0.0
	if possession, ok := scores.get(scouting.CategoryPossession); ok {
		switch {
		case possession.score >= 85:
			bonus = 8
		case possession.score >= 75:
			bonus = 6
		case possession.score >= 65:
			bonus = 4
		}
	}

	exceptional := 0
	for _, cs := range scores {
		if cs.score >= 85 {
			exceptional++
		}
	}

	rating := base + bonus + float64(exceptional*2) + 5
	return clampInt(roundHalfEven(rating), 50, 99)
}

func summary(info models.GeneralInfo, rating int, scores categoryScores, style models.PlayingStyle) string {
	var ageDesc string
	switch {
	case info.Age <= 20:
		ageDesc = "promising young"
	case info.Age <= 23:
		ageDesc = "developing"
	case info.Age <= 28:
		ageDesc = "peak-age"
	default:
		ageDesc = "experienced"
	}

	best := scores.best()
	return fmt.Sprintf(
		"%s is a %s %s currently rated at %d/100. Their strongest aspect is %s (%d/100), with a playing style primarily focused on %s. They also show good capabilities in %s.",
		info.Name, ageDesc, info.Position, rating, best.category, best.score,
		strings.ToLower(style.PrimaryStyle), strings.ToLower(style.SecondaryStyle),
	)
}

// meanPercentile averages the percentiles of every report entry named in statNames.
// ok is false when none are present.
func meanPercentile(report []models.ScoutingMetric, statNames []string) (float64, bool) {
	wanted := make(map[string]bool, len(statNames))
	for _, s := range statNames {
		wanted[s] = true
	}
	var data stats.Float64Data
	for _, m := range report {
		if wanted[m.Stat] {
			data = append(data, m.Percentile)
		}
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, false
	}
	return mean, true
}

func topN(rated []models.RatedStat, n int) []models.RatedStat {
	if len(rated) > n {
		rated = rated[:n]
	}
	out := make([]models.RatedStat, len(rated))
	copy(out, rated)
	return out
}

// roundHalfEven matches the rounding the published ratings were computed with
func roundHalfEven(x float64) int {
	return int(math.RoundToEven(x))
}

func round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
