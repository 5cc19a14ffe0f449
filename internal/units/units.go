// Package units converts quantities between measurement units within a
// category. Weight, volume, and count are disjoint: converting across
// them is ingredient-density-dependent and is always rejected rather
// than approximated.
package units

import (
	"fmt"
	"strings"

	"github.com/pantrylens/pantry-cli/internal/model"
)

// Category partitions units into disjoint conversion domains.
type Category string

const (
	CategoryWeight Category = "weight"
	CategoryVolume Category = "volume"
	CategoryCount  Category = "count"
)

// Conversion factors to the category base unit (grams, milliliters,
// pieces). Immutable reference data.
var weightFactors = map[model.Unit]float64{
	model.UnitGram:     1,
	model.UnitKilogram: 1000,
	model.UnitPound:    453.592,
	model.UnitOunce:    28.3495,
}

var volumeFactors = map[model.Unit]float64{
	model.UnitMilliliter: 1,
	model.UnitLiter:      1000,
	model.UnitCup:        240,
	model.UnitTablespoon: 15,
	model.UnitTeaspoon:   5,
	model.UnitFluidOunce: 29.5735,
}

var countFactors = map[model.Unit]float64{
	model.UnitPiece: 1,
	model.UnitDozen: 12,
}

// IncompatibleUnitsError reports a conversion requested across
// categories (e.g. grams to cups). Terminal and user-facing.
type IncompatibleUnitsError struct {
	From model.Unit
	To   model.Unit
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("units: cannot convert %s to %s: incompatible categories", e.From, e.To)
}

// UnknownUnitError reports a unit outside the closed enumeration.
type UnknownUnitError struct {
	Unit model.Unit
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("units: unknown unit %q", e.Unit)
}

// CategoryOf returns the category a unit belongs to.
func CategoryOf(u model.Unit) (Category, bool) {
	if _, ok := weightFactors[u]; ok {
		return CategoryWeight, true
	}
	if _, ok := volumeFactors[u]; ok {
		return CategoryVolume, true
	}
	if _, ok := countFactors[u]; ok {
		return CategoryCount, true
	}
	return "", false
}

// Compatible reports whether two units share a category.
func Compatible(a, b model.Unit) bool {
	ca, ok := CategoryOf(a)
	if !ok {
		return false
	}
	cb, ok := CategoryOf(b)
	if !ok {
		return false
	}
	return ca == cb
}

// BaseUnit returns the base unit of a category.
func BaseUnit(c Category) model.Unit {
	switch c {
	case CategoryWeight:
		return model.UnitGram
	case CategoryVolume:
		return model.UnitMilliliter
	default:
		return model.UnitPiece
	}
}

func factor(u model.Unit) (float64, Category, bool) {
	if f, ok := weightFactors[u]; ok {
		return f, CategoryWeight, true
	}
	if f, ok := volumeFactors[u]; ok {
		return f, CategoryVolume, true
	}
	if f, ok := countFactors[u]; ok {
		return f, CategoryCount, true
	}
	return 0, "", false
}

// Convert converts a quantity between two units of the same category.
// Returns IncompatibleUnitsError when the categories differ and
// UnknownUnitError for units outside the table.
func Convert(quantity float64, from, to model.Unit) (float64, error) {
	fromFactor, fromCat, ok := factor(from)
	if !ok {
		return 0, &UnknownUnitError{Unit: from}
	}
	toFactor, toCat, ok := factor(to)
	if !ok {
		return 0, &UnknownUnitError{Unit: to}
	}
	if fromCat != toCat {
		return 0, &IncompatibleUnitsError{From: from, To: to}
	}
	return quantity * fromFactor / toFactor, nil
}

// unitAliases maps label/OCR tokens to canonical units.
var unitAliases = map[string]model.Unit{
	"g":           model.UnitGram,
	"gr":          model.UnitGram,
	"gram":        model.UnitGram,
	"grams":       model.UnitGram,
	"kg":          model.UnitKilogram,
	"kilogram":    model.UnitKilogram,
	"kilograms":   model.UnitKilogram,
	"lb":          model.UnitPound,
	"lbs":         model.UnitPound,
	"pound":       model.UnitPound,
	"pounds":      model.UnitPound,
	"oz":          model.UnitOunce,
	"ounce":       model.UnitOunce,
	"ounces":      model.UnitOunce,
	"ml":          model.UnitMilliliter,
	"milliliter":  model.UnitMilliliter,
	"milliliters": model.UnitMilliliter,
	"l":           model.UnitLiter,
	"liter":       model.UnitLiter,
	"liters":      model.UnitLiter,
	"litre":       model.UnitLiter,
	"litres":      model.UnitLiter,
	"cup":         model.UnitCup,
	"cups":        model.UnitCup,
	"tbsp":        model.UnitTablespoon,
	"tablespoon":  model.UnitTablespoon,
	"tablespoons": model.UnitTablespoon,
	"tsp":         model.UnitTeaspoon,
	"teaspoon":    model.UnitTeaspoon,
	"teaspoons":   model.UnitTeaspoon,
	"floz":        model.UnitFluidOunce,
	"pc":          model.UnitPiece,
	"pcs":         model.UnitPiece,
	"piece":       model.UnitPiece,
	"pieces":      model.UnitPiece,
	"ct":          model.UnitPiece,
	"count":       model.UnitPiece,
	"x":           model.UnitPiece,
	"dozen":       model.UnitDozen,
}

// ParseUnit resolves a free-text token to a unit from the closed
// enumeration. Returns false for unrecognized tokens.
func ParseUnit(token string) (model.Unit, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(token))]
	return u, ok
}
