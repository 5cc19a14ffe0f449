package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantrylens/pantry-cli/internal/sufficiency"
)

var (
	shoppingRecipe   string
	shoppingServings int
	shoppingOut      string
	shoppingJSON     bool
)

var shoppinglistCmd = &cobra.Command{
	Use:   "shoppinglist",
	Short: "Derive a shopping list for a recipe's shortfalls",
	Long:  "Checks recipe sufficiency and turns the shortfalls into purchasable line items rounded to practical increments. --out writes an .xlsx spreadsheet.",
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

		recipe, err := loadRecipe(shoppingRecipe, env.registry)
		if err != nil {
			return err
		}

		res, err := env.checker.Check(ctx, userFlag, recipe.Requirements, shoppingServings, recipe.BaseServings)
		if err != nil {
			return err
		}
		list := sufficiency.ShoppingList(res)

		if shoppingOut != "" {
			if err := sufficiency.WriteXLSX(list, shoppingOut); err != nil {
				return err
			}
			fmt.Printf("wrote %d items to %s\n", len(list), shoppingOut)
			return nil
		}
		if shoppingJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		if len(list) == 0 {
			fmt.Println("Nothing to buy: the inventory covers the recipe.")
			return nil
		}
		renderShoppingList(list)
		return nil
	},
}

func init() {
	shoppinglistCmd.Flags().StringVar(&shoppingRecipe, "recipe", "", "recipe YAML file (required)")
	shoppinglistCmd.Flags().IntVar(&shoppingServings, "servings", 0, "target serving count (required)")
	shoppinglistCmd.Flags().StringVar(&shoppingOut, "out", "", "write the list as an xlsx spreadsheet")
	shoppinglistCmd.Flags().BoolVar(&shoppingJSON, "json", false, "print the list as JSON")
	_ = shoppinglistCmd.MarkFlagRequired("recipe")
	_ = shoppinglistCmd.MarkFlagRequired("servings")
	rootCmd.AddCommand(shoppinglistCmd)
}
