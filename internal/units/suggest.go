package units

import "github.com/pantrylens/pantry-cli/internal/model"

// SuggestFor returns a ranked, category-appropriate unit list for
// pre-populating pickers. Advisory only: the list is not validated
// against the conversion table and callers may accept any unit.
func SuggestFor(ing model.CanonicalIngredient) []model.Unit {
	if ing.HasTag(model.TagLiquid) {
		return []model.Unit{
			model.UnitMilliliter,
			model.UnitLiter,
			model.UnitCup,
			model.UnitFluidOunce,
			model.UnitTablespoon,
		}
	}

	switch ing.Category {
	case model.CategoryProtein:
		return []model.Unit{
			model.UnitGram,
			model.UnitKilogram,
			model.UnitPound,
			model.UnitPiece,
		}
	case model.CategoryVegetable:
		return []model.Unit{
			model.UnitPiece,
			model.UnitGram,
			model.UnitKilogram,
			model.UnitPound,
		}
	case model.CategoryGrain:
		return []model.Unit{
			model.UnitGram,
			model.UnitKilogram,
			model.UnitCup,
			model.UnitPound,
		}
	case model.CategoryDairy:
		return []model.Unit{
			model.UnitGram,
			model.UnitMilliliter,
			model.UnitCup,
			model.UnitPiece,
		}
	case model.CategorySpice:
		return []model.Unit{
			model.UnitTeaspoon,
			model.UnitTablespoon,
			model.UnitGram,
		}
	default:
		return []model.Unit{
			model.UnitPiece,
			model.UnitGram,
			model.UnitMilliliter,
		}
	}
}
