package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/waterfall"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func renderDetections(dets []model.ClassifiedDetection) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Label", "Canonical", "Tier", "Conf", "Qty", "Alternatives", "Warnings"})
	for _, d := range dets {
		qty := "-"
		if d.Quantity != nil {
			qty = fmt.Sprintf("%g %s", d.Quantity.Value, d.Quantity.Unit)
			if d.Quantity.Estimated {
				qty = "~" + qty
			}
		}
		name := d.CanonicalName
		if !d.Known {
			name += " (unknown)"
		}
		t.AppendRow(table.Row{
			d.ID, d.Label, name, d.Tier, fmt.Sprintf("%.2f", d.Confidence),
			qty, strings.Join(d.Alternatives, ", "), strings.Join(d.AllergenWarnings, "; "),
		})
	}
	t.Render()
}

func renderInventory(snap *waterfall.Snapshot) {
	t := newTable()
	t.AppendHeader(table.Row{"Ingredient", "Qty", "Unit", "Provenance", "Notes"})
	for _, item := range snap.Items {
		qty := "-"
		if item.Quantity != nil {
			qty = fmt.Sprintf("%g", *item.Quantity)
		}
		notes := ""
		if item.NeedsReconciliation {
			notes = "needs reconciliation: " + strings.Join(item.ReconcileNotes, "; ")
		}
		t.AppendRow(table.Row{item.DisplayName, qty, item.Unit, item.Provenance, notes})
	}
	t.Render()
	if snap.Stale {
		fmt.Printf("(stale snapshot from %s, source %s)\n", snap.AsOf.Format("2006-01-02 15:04"), snap.Source)
	}
}

func renderSufficiency(res *model.SufficiencyResult) {
	if res.Sufficient {
		fmt.Println("Sufficient: the inventory covers every requirement.")
	} else {
		fmt.Println("Not sufficient.")
	}

	if len(res.Missing) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Missing", "Needed", "Unit"})
		for _, m := range res.Missing {
			t.AppendRow(table.Row{m.CanonicalName, fmt.Sprintf("%g", m.Needed), m.Unit})
		}
		t.Render()
	}
	if len(res.Surplus) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Surplus", "Excess", "Unit"})
		for _, s := range res.Surplus {
			t.AppendRow(table.Row{s.CanonicalName, fmt.Sprintf("%g", s.Excess), s.Unit})
		}
		t.Render()
	}
	if len(res.Unknown) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Undetermined", "Reason"})
		for _, u := range res.Unknown {
			t.AppendRow(table.Row{u.CanonicalName, u.Reason})
		}
		t.Render()
	}
}

func renderShoppingList(items []model.ShoppingItem) {
	t := newTable()
	t.AppendHeader(table.Row{"Ingredient", "Buy", "Unit", "Exact"})
	for _, item := range items {
		t.AppendRow(table.Row{
			item.CanonicalName, fmt.Sprintf("%g", item.Quantity), item.Unit,
			fmt.Sprintf("%.1f", item.Exact),
		})
	}
	t.Render()
}
