package model

// Unit is a measurement unit from the closed enumeration understood by
// the unit converter. Values are lowercase singular identifiers.
type Unit string

const (
	UnitGram       Unit = "grams"
	UnitKilogram   Unit = "kilograms"
	UnitPound      Unit = "pounds"
	UnitOunce      Unit = "ounces"
	UnitMilliliter Unit = "milliliters"
	UnitLiter      Unit = "liters"
	UnitCup        Unit = "cups"
	UnitTablespoon Unit = "tablespoons"
	UnitTeaspoon   Unit = "teaspoons"
	UnitFluidOunce Unit = "fluid_ounces"
	UnitPiece      Unit = "pieces"
	UnitDozen      Unit = "dozen"
)
