package models

// PlayerOverview is the upstream analysis disclosed only after an explicit reveal
type PlayerOverview struct {
	OverallRating       int                 `json:"overall_rating"`
	Summary             string              `json:"summary"`
	PerformanceProfile  PerformanceProfile  `json:"performance_profile"`
	DevelopmentAnalysis DevelopmentAnalysis `json:"development_analysis"`
	Potential           *Potential          `json:"potential,omitempty"`
}

// PerformanceProfile groups category scores, strengths, weaknesses and style
type PerformanceProfile struct {
	CategoryScores      map[string]CategoryScore `json:"category_scores"`
	KeyStrengths        []RatedStat              `json:"key_strengths"`
	AreasForImprovement []RatedStat              `json:"areas_for_improvement"`
	PlayingStyle        PlayingStyle             `json:"playing_style"`
}

// CategoryScore is a 0-100 category score and its weighted contribution
type CategoryScore struct {
	Score        int     `json:"score"`
	Weight       float64 `json:"weight,omitempty"`
	Contribution float64 `json:"contribution"`
}

// RatedStat is a scouting stat lifted into a strength or weakness list
type RatedStat struct {
	Stat          string  `json:"stat"`
	Value         float64 `json:"value"`
	Percentile    float64 `json:"percentile"`
	WeightedScore float64 `json:"weighted_score,omitempty"`
	Category      string  `json:"category,omitempty"`
}

// PlayingStyle describes the dominant and secondary style of play
type PlayingStyle struct {
	PrimaryStyle           string             `json:"primary_style"`
	SecondaryStyle         string             `json:"secondary_style"`
	StyleCharacteristics   map[string]float64 `json:"style_characteristics,omitempty"`
	PositionSpecificTraits *PositionTraits    `json:"position_specific_traits,omitempty"`
}

// PositionTraits holds the role inferred from position-specific trait scores
type PositionTraits struct {
	PositionRole string                `json:"position_role"`
	KeyTraits    map[string]TraitScore `json:"key_traits"`
}

// TraitScore is one position trait with its descriptive level
type TraitScore struct {
	Score      int    `json:"score"`
	Level      string `json:"level"`
	Percentile int    `json:"percentile"`
}

// DevelopmentAnalysis is the development plan attached to an overview
type DevelopmentAnalysis struct {
	PriorityAreas           *PriorityAreas           `json:"priority_areas,omitempty"`
	DevelopmentTimeframe    string                   `json:"development_timeframe"`
	TrainingRecommendations []TrainingRecommendation `json:"training_recommendations"`
}

// PriorityAreas buckets weaknesses by urgency
type PriorityAreas struct {
	Critical      []RatedStat `json:"critical"`
	Important     []RatedStat `json:"important"`
	Supplementary []RatedStat `json:"supplementary"`
}

// TrainingRecommendation is a single focus area in the development plan
type TrainingRecommendation struct {
	FocusArea    string  `json:"focus_area"`
	Priority     string  `json:"priority"`
	CurrentLevel float64 `json:"current_level"`
	TargetLevel  float64 `json:"target_level"`
	Timeframe    string  `json:"timeframe"`
}

// Potential projects the rating a player may grow into
type Potential struct {
	CurrentRating        int            `json:"current_rating"`
	PotentialRating      int            `json:"potential_rating"`
	DevelopmentTimeframe string         `json:"development_timeframe"`
	KeyDevelopmentAreas  *PriorityAreas `json:"key_development_areas,omitempty"`
}
