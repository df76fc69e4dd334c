package scouting

import (
	"math"
	"strings"

	"playerscout/models"
)

// Slot is one taxonomy position in a categorized report. A stat the report
// does not carry keeps its slot with Found=false and an empty bar.
type Slot struct {
	Stat       string  `json:"stat"`
	Per90      float64 `json:"per_90"`
	Percentile float64 `json:"percentile"`
	Found      bool    `json:"found"`
}

// BarWidth is the percentage of the bar to fill for this slot
func (s Slot) BarWidth() float64 {
	if !s.Found {
		return 0
	}
	return BarWidth(s.Percentile)
}

// Section is one category of a categorized report
type Section struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Slots    []Slot   `json:"slots"`
}

// FoundCount returns how many slots carry a value
func (s Section) FoundCount() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.Found {
			n++
		}
	}
	return n
}

// CategorizedReport is derived from a scouting report at render time and never stored
type CategorizedReport struct {
	Sections []Section `json:"sections"`
}

// Section returns the section for a category
func (r CategorizedReport) Section(category Category) (Section, bool) {
	for _, s := range r.Sections {
		if s.Category == category {
			return s, true
		}
	}
	return Section{}, false
}

// Categorize lays metrics out along the taxonomy. Matching is exact on the
// stat name; when a name repeats in the input the first occurrence wins.
func Categorize(metrics []models.ScoutingMetric, taxonomy Taxonomy) CategorizedReport {
	byName := make(map[string]models.ScoutingMetric, len(metrics))
	for _, m := range metrics {
		if _, seen := byName[m.Stat]; !seen {
			byName[m.Stat] = m
		}
	}

	report := CategorizedReport{Sections: make([]Section, 0, len(taxonomy))}
	for _, spec := range taxonomy {
		section := Section{
			Category: spec.Category,
			Title:    spec.Category.Title(),
			Slots:    make([]Slot, 0, len(spec.Stats)),
		}
		for _, name := range spec.Stats {
			slot := Slot{Stat: name}
			if m, ok := byName[name]; ok {
				slot.Per90 = m.Per90
				slot.Percentile = m.Percentile
				slot.Found = true
			}
			section.Slots = append(section.Slots, slot)
		}
		report.Sections = append(report.Sections, section)
	}
	return report
}

// Flatten turns a categorized report back into metrics, in taxonomy order,
// skipping empty slots. Values are copied unchanged.
func Flatten(report CategorizedReport) []models.ScoutingMetric {
	var out []models.ScoutingMetric
	for _, section := range report.Sections {
		for _, slot := range section.Slots {
			if !slot.Found {
				continue
			}
			out = append(out, models.ScoutingMetric{
				Stat:       slot.Stat,
				Per90:      slot.Per90,
				Percentile: slot.Percentile,
			})
		}
	}
	return out
}

var labelKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryAttacking, []string{"Goals", "Shots", "xG", "Assists"}},
	{CategoryPossession, []string{"Passes", "Carries", "Take-Ons", "Touches"}},
	{CategoryDefensive, []string{"Tackles", "Interceptions", "Blocks", "Clearances"}},
}

// ClassifyLabel styles a single stat label by keyword, independent of any
// taxonomy. The first category with a matching keyword wins.
func ClassifyLabel(label string) Category {
	for _, group := range labelKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(label, kw) {
				return group.category
			}
		}
	}
	return CategoryNone
}

// BarWidth maps a 0-100 percentile to a fill percentage. Out-of-range and NaN
// inputs are clamped so a bad upstream value cannot overflow the bar.
func BarWidth(percentile float64) float64 {
	switch {
	case math.IsNaN(percentile), percentile <= 0:
		return 0
	case percentile >= 100:
		return 100
	default:
		return percentile
	}
}
