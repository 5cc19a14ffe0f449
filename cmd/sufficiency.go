package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/units"
)

var (
	sufficiencyRecipe   string
	sufficiencyServings int
	sufficiencyJSON     bool
)

// recipeFile is the on-disk recipe format.
type recipeFile struct {
	Name         string              `yaml:"name"`
	BaseServings int                 `yaml:"base_servings"`
	Requirements []model.Requirement `yaml:"requirements"`
}

// loadRecipe reads a recipe file, canonicalizes its ingredient labels,
// and normalizes unit spellings.
func loadRecipe(path string, reg *canonical.Registry) (*recipeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read recipe %s", path)
	}
	var recipe recipeFile
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, eris.Wrapf(err, "parse recipe %s", path)
	}
	if recipe.BaseServings == 0 {
		recipe.BaseServings = 1
	}
	for i, req := range recipe.Requirements {
		recipe.Requirements[i].CanonicalName = reg.Canonicalize(req.CanonicalName).Name
		if parsed, ok := units.ParseUnit(string(req.Unit)); ok {
			recipe.Requirements[i].Unit = parsed
		}
	}
	return &recipe, nil
}

var sufficiencyCmd = &cobra.Command{
	Use:   "sufficiency",
	Short: "Check whether the inventory covers a recipe",
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

		recipe, err := loadRecipe(sufficiencyRecipe, env.registry)
		if err != nil {
			return err
		}

		res, err := env.checker.Check(ctx, userFlag, recipe.Requirements, sufficiencyServings, recipe.BaseServings)
		if err != nil {
			return err
		}

		if sufficiencyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		renderSufficiency(res)
		return nil
	},
}

func init() {
	sufficiencyCmd.Flags().StringVar(&sufficiencyRecipe, "recipe", "", "recipe YAML file (required)")
	sufficiencyCmd.Flags().IntVar(&sufficiencyServings, "servings", 0, "target serving count (required)")
	sufficiencyCmd.Flags().BoolVar(&sufficiencyJSON, "json", false, "print the result as JSON")
	_ = sufficiencyCmd.MarkFlagRequired("recipe")
	_ = sufficiencyCmd.MarkFlagRequired("servings")
	rootCmd.AddCommand(sufficiencyCmd)
}
