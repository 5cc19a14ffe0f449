package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/units"
)

var (
	inventoryJSON   bool
	inventoryAdd    string
	inventoryQty    float64
	inventoryUnit   string
	inventoryRemove string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show or edit the inventory",
	Long:  "Lists the available inventory, falling back to the last local snapshot when the store is unreachable. --add and --remove make manual edits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("offline"); err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if inventoryRemove != "" {
			ing := env.registry.Canonicalize(inventoryRemove)
			return env.store.DeleteItem(ctx, userFlag, ing.Name)
		}
		if inventoryAdd != "" {
			ing := env.registry.Canonicalize(inventoryAdd)
			unit := model.Unit(inventoryUnit)
			if parsed, ok := units.ParseUnit(inventoryUnit); ok {
				unit = parsed
			}
			item := &model.InventoryItem{
				UserID:        userFlag,
				CanonicalName: ing.Name,
				DisplayName:   ing.DisplayName,
				Unit:          unit,
				Provenance:    model.ProvenanceManual,
				Status:        model.StatusAvailable,
			}
			if inventoryQty > 0 {
				item.Quantity = &inventoryQty
			}
			if err := env.store.PutItem(ctx, item); err != nil {
				return err
			}
		}

		snap, err := env.inventory.Resolve(ctx, userFlag)
		if err != nil {
			return err
		}
		if !snap.Stale {
			_ = env.snapshots.Save(userFlag, snap.Items)
		}

		if inventoryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		renderInventory(snap)
		return nil
	},
}

func init() {
	inventoryCmd.Flags().BoolVar(&inventoryJSON, "json", false, "print the inventory as JSON")
	inventoryCmd.Flags().StringVar(&inventoryAdd, "add", "", "add an item by label before listing")
	inventoryCmd.Flags().Float64Var(&inventoryQty, "qty", 0, "quantity for --add")
	inventoryCmd.Flags().StringVar(&inventoryUnit, "unit", "", "unit for --add (grams, milliliters, pieces, ...)")
	inventoryCmd.Flags().StringVar(&inventoryRemove, "remove", "", "remove an item by label")
	rootCmd.AddCommand(inventoryCmd)
}
