// Package scouting groups per-90 scouting metrics into attacking, possession and
// defensive sections and maps percentiles onto bar fills. Everything here is pure.
package scouting

// Category names a scouting bucket
type Category string

const (
	CategoryAttacking  Category = "attacking"
	CategoryPossession Category = "possession"
	CategoryDefensive  Category = "defensive"
	CategoryNone       Category = ""
)

// Categories lists the buckets in display order
var Categories = []Category{CategoryAttacking, CategoryPossession, CategoryDefensive}

// Title returns the section heading for the category
func (c Category) Title() string {
	switch c {
	case CategoryAttacking:
		return "Attacking"
	case CategoryPossession:
		return "Possession"
	case CategoryDefensive:
		return "Defensive"
	default:
		return "Other"
	}
}

// CategorySpec is one taxonomy entry: a category and the canonical stat names it claims, in display order
type CategorySpec struct {
	Category Category
	Stats    []string
}

// Taxonomy is an ordered set of category specs. Its order, not the order of
// the incoming report, decides how a categorized report is laid out.
type Taxonomy []CategorySpec

// DefaultTaxonomy is the stat grouping used by the scouting view and the overview analyzer
var DefaultTaxonomy = Taxonomy{
	{
		Category: CategoryAttacking,
		Stats: []string{
			"Non-Penalty Goals",
			"npxG: Non-Penalty xG",
			"Shots Total",
			"Assists",
			"xAG: Exp. Assisted Goals",
			"Shot-Creating Actions",
		},
	},
	{
		Category: CategoryPossession,
		Stats: []string{
			"Passes Attempted",
			"Pass Completion %",
			"Progressive Passes",
			"Progressive Carries",
			"Successful Take-Ons",
			"Progressive Passes Rec",
		},
	},
	{
		Category: CategoryDefensive,
		Stats: []string{
			"Tackles",
			"Interceptions",
			"Blocks",
			"Clearances",
			"Aerials Won",
		},
	},
}

// CategoryOf returns the first category claiming stat, or CategoryNone
func (t Taxonomy) CategoryOf(stat string) Category {
	for _, spec := range t {
		for _, name := range spec.Stats {
			if name == stat {
				return spec.Category
			}
		}
	}
	return CategoryNone
}

// Spec returns the entry for a category
func (t Taxonomy) Spec(category Category) (CategorySpec, bool) {
	for _, spec := range t {
		if spec.Category == category {
			return spec, true
		}
	}
	return CategorySpec{}, false
}
