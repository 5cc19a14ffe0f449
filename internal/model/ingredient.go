// Package model defines the core domain types shared across the
// scan-to-inventory pipeline.
package model

// IngredientCategory buckets canonical ingredients for suggestion
// ranking, dietary filtering, and standard-serving fallbacks.
type IngredientCategory string

const (
	CategoryProtein   IngredientCategory = "protein"
	CategoryVegetable IngredientCategory = "vegetable"
	CategoryGrain     IngredientCategory = "grain"
	CategoryDairy     IngredientCategory = "dairy"
	CategorySpice     IngredientCategory = "spice"
	CategoryOther     IngredientCategory = "other"
)

// AllCategories returns every valid ingredient category.
func AllCategories() []IngredientCategory {
	return []IngredientCategory{
		CategoryProtein,
		CategoryVegetable,
		CategoryGrain,
		CategoryDairy,
		CategorySpice,
		CategoryOther,
	}
}

// Ingredient tags used for dietary filtering and unit suggestions.
const (
	TagMeat    = "meat"
	TagDairy   = "dairy"
	TagEgg     = "egg"
	TagSeafood = "seafood"
	TagLiquid  = "liquid"
)

// CanonicalIngredient is the normalized identity of an ingredient.
// Entries are immutable reference data loaded once at startup.
type CanonicalIngredient struct {
	Name        string             `json:"name" yaml:"name"`
	DisplayName string             `json:"display_name" yaml:"display"`
	Category    IngredientCategory `json:"category" yaml:"category"`
	Group       string             `json:"group,omitempty" yaml:"group,omitempty"`
	Tags        []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Aliases     []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Known is false for degraded entries synthesized from labels that
	// matched nothing in the reference table. The pipeline never blocks
	// on vocabulary gaps.
	Known bool `json:"known" yaml:"-"`
}

// HasTag reports whether the ingredient carries the given tag.
func (c CanonicalIngredient) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DietaryRestriction is a declared household dietary flag.
type DietaryRestriction string

const (
	DietVegetarian DietaryRestriction = "vegetarian"
	DietVegan      DietaryRestriction = "vegan"
)

// SafetyConstraints holds a household's declared allergens and dietary
// restrictions. Read-only input to classification and suggestion.
type SafetyConstraints struct {
	Allergens []string             `json:"allergens" yaml:"allergens"`
	Diets     []DietaryRestriction `json:"diets" yaml:"diets"`
}

// HasDiet reports whether the restriction is declared.
func (s SafetyConstraints) HasDiet(d DietaryRestriction) bool {
	for _, r := range s.Diets {
		if r == d {
			return true
		}
	}
	return false
}
