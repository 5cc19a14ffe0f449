package sufficiency

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/units"
)

// Purchase increments per unit category: weights round up to 50 g,
// volumes to 50 ml, counts to whole pieces.
const (
	weightIncrementGrams      = 50.0
	volumeIncrementMilliliter = 50.0
)

// ShoppingList converts a sufficiency result's shortfalls into
// purchasable line items. Quantities are normalized to the category
// base unit and rounded up to a practical increment; the exact
// shortfall is kept alongside.
func ShoppingList(res *model.SufficiencyResult) []model.ShoppingItem {
	var list []model.ShoppingItem
	for _, short := range res.Missing {
		list = append(list, shoppingItem(short))
	}
	return list
}

func shoppingItem(short model.ShortfallEntry) model.ShoppingItem {
	item := model.ShoppingItem{
		CanonicalName: short.CanonicalName,
		Exact:         short.Needed,
		Quantity:      math.Ceil(short.Needed),
		Unit:          short.Unit,
	}

	cat, ok := units.CategoryOf(short.Unit)
	if !ok {
		return item
	}
	base := units.BaseUnit(cat)
	exact, err := units.Convert(short.Needed, short.Unit, base)
	if err != nil {
		return item
	}
	item.Exact = exact
	item.Unit = base

	switch cat {
	case units.CategoryWeight:
		item.Quantity = roundUpTo(exact, weightIncrementGrams)
	case units.CategoryVolume:
		item.Quantity = roundUpTo(exact, volumeIncrementMilliliter)
	default:
		item.Quantity = math.Ceil(exact)
	}
	return item
}

func roundUpTo(v, increment float64) float64 {
	return math.Ceil(v/increment) * increment
}

// WriteXLSX writes a shopping list as a spreadsheet.
func WriteXLSX(items []model.ShoppingItem, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Shopping List")
	if err != nil {
		return eris.Wrap(err, "sufficiency: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"Ingredient", "Quantity", "Unit", "Exact Shortfall"} {
		header.AddCell().SetString(col)
	}
	for _, item := range items {
		row := sheet.AddRow()
		row.AddCell().SetString(item.CanonicalName)
		row.AddCell().SetFloat(item.Quantity)
		row.AddCell().SetString(string(item.Unit))
		row.AddCell().SetFloat(item.Exact)
	}

	return eris.Wrapf(file.Save(path), "sufficiency: save %s", path)
}
