package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/pkg/vision"
)

var (
	analyzeImage       string
	analyzeStorageArea string
	analyzeAllergens   []string
	analyzeDiets       []string
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan a pantry photo and classify the detections",
	Long:  "Sends an image to the vision service, resolves each detection to a canonical ingredient, and prints the tiered detections for review. Nothing enters the inventory until confirmed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		image, err := os.ReadFile(analyzeImage)
		if err != nil {
			return eris.Wrapf(err, "read image %s", analyzeImage)
		}

		detector := vision.NewClient(cfg.Vision.Key,
			vision.WithBaseURL(cfg.Vision.BaseURL),
			vision.WithRateLimit(cfg.Vision.RequestsPerSec),
			vision.WithTimeout(time.Duration(cfg.Vision.TimeoutSecs)*time.Second),
		)
		resp, err := detector.Detect(ctx, vision.DetectRequest{
			Image:   image,
			Context: &model.ScanContext{StorageArea: analyzeStorageArea},
		})
		if err != nil {
			return eris.Wrap(err, "vision detect")
		}

		cons := model.SafetyConstraints{
			Allergens: analyzeAllergens,
			Diets:     parseDiets(analyzeDiets),
		}
		classified := env.classifier.ClassifyBatch(ctx, userFlag, resp.Detections, cons)

		zap.L().Info("scan analyzed",
			zap.String("scan", resp.ScanID),
			zap.Int("detections", len(classified)),
		)

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(classified)
		}
		renderDetections(classified)
		return nil
	},
}

func parseDiets(raw []string) []model.DietaryRestriction {
	diets := make([]model.DietaryRestriction, len(raw))
	for i, d := range raw {
		diets[i] = model.DietaryRestriction(d)
	}
	return diets
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeImage, "image", "", "path to the shelf photo (required)")
	analyzeCmd.Flags().StringVar(&analyzeStorageArea, "storage-area", "", "storage area label (pantry, fridge, freezer)")
	analyzeCmd.Flags().StringSliceVar(&analyzeAllergens, "allergen", nil, "declared household allergen (repeatable)")
	analyzeCmd.Flags().StringSliceVar(&analyzeDiets, "diet", nil, "dietary restriction: vegetarian or vegan (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print detections as JSON instead of a table")
	_ = analyzeCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(analyzeCmd)
}
