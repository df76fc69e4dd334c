package analysis

import (
	"math"

	"playerscout/models"
)

// Training priorities, most urgent first
const (
	PriorityCritical      = "critical"
	PriorityImportant     = "important"
	PrioritySupplementary = "supplementary"
)

// DevelopmentTimeframe describes how far off a player's peak is
func DevelopmentTimeframe(age int) string {
	switch {
	case age <= 19:
		return "Long-term (3-5 years for full potential)"
	case age <= 23:
		return "Medium-term (2-3 years for peak performance)"
	case age <= 27:
		return "Short-term (1-2 years for refinements)"
	default:
		return "Maintenance phase"
	}
}

// PriorityOf buckets a weakness by its percentile
func PriorityOf(percentile float64) string {
	switch {
	case percentile < 20:
		return PriorityCritical
	case percentile < 30:
		return PriorityImportant
	default:
		return PrioritySupplementary
	}
}

func developmentAnalysis(weaknesses []models.RatedStat, age int) models.DevelopmentAnalysis {
	areas := &models.PriorityAreas{
		Critical:      []models.RatedStat{},
		Important:     []models.RatedStat{},
		Supplementary: []models.RatedStat{},
	}
	for _, w := range weaknesses {
		switch PriorityOf(w.Percentile) {
		case PriorityCritical:
			areas.Critical = append(areas.Critical, w)
		case PriorityImportant:
			areas.Important = append(areas.Important, w)
		default:
			areas.Supplementary = append(areas.Supplementary, w)
		}
	}

	recommendations := []models.TrainingRecommendation{}
	buckets := []struct {
		priority string
		stats    []models.RatedStat
	}{
		{PriorityCritical, areas.Critical},
		{PriorityImportant, areas.Important},
		{PrioritySupplementary, areas.Supplementary},
	}
	for _, b := range buckets {
		timeframe := "Medium-term"
		if b.priority == PriorityCritical {
			timeframe = "Short-term"
		}
		for _, w := range b.stats {
			recommendations = append(recommendations, models.TrainingRecommendation{
				FocusArea:    w.Stat,
				Priority:     b.priority,
				CurrentLevel: w.Percentile,
				TargetLevel:  math.Min(w.Percentile+20, 90),
				Timeframe:    timeframe,
			})
		}
	}

	return models.DevelopmentAnalysis{
		PriorityAreas:           areas,
		DevelopmentTimeframe:    DevelopmentTimeframe(age),
		TrainingRecommendations: recommendations,
	}
}

// potentialIncrease is the headroom expected at a given age before form adjustments
func potentialIncrease(age int) float64 {
	switch {
	case age <= 19:
		return 15
	case age <= 21:
		return 12
	case age <= 23:
		return 8
	case age <= 25:
		return 5
	case age <= 27:
		return 3
	default:
		return 0
	}
}

func potential(rating, age int, scores categoryScores, development models.DevelopmentAnalysis) *models.Potential {
	increase := potentialIncrease(age)
	switch {
	case rating >= 85:
		increase *= 0.5
	case rating <= 65:
		increase *= 1.2
	}
	if scores.best().score >= 85 {
		increase += 2
	}

	projected := roundHalfEven(float64(rating) + increase)
	if projected > 99 {
		projected = 99
	}

	return &models.Potential{
		CurrentRating:        rating,
		PotentialRating:      projected,
		DevelopmentTimeframe: development.DevelopmentTimeframe,
		KeyDevelopmentAreas:  development.PriorityAreas,
	}
}
