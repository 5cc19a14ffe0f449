package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pantrylens/pantry-cli/internal/confirm"
	"github.com/pantrylens/pantry-cli/internal/model"
)

var (
	confirmDetections string
	confirmDecisions  string
)

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Apply confirmation decisions for a reviewed scan",
	Long:  "Reads the classified detections of a scan and the user's confirm/modify/reject decisions, then applies them to the inventory. Re-running the same files is a no-op.",
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

		var detections []model.ClassifiedDetection
		if err := readJSONFile(confirmDetections, &detections); err != nil {
			return err
		}
		var decisions []confirm.Decision
		if err := readJSONFile(confirmDecisions, &decisions); err != nil {
			return err
		}

		res, err := env.workflow.Apply(ctx, userFlag, detections, decisions)
		if err != nil {
			return err
		}

		// Refresh the offline snapshot so read-only commands see the
		// post-confirmation inventory.
		if items, listErr := env.store.ListInventory(ctx, userFlag); listErr == nil {
			_ = env.snapshots.Save(userFlag, items)
		}

		fmt.Printf("confirmed %d, modified %d, rejected %d, failed %d\n",
			res.Confirmed, res.Modified, res.Rejected, res.Failed)
		for _, out := range res.Outcomes {
			if out.Status == confirm.StatusFailed {
				fmt.Printf("  %s: %s\n", out.DetectionID, out.Error)
			}
		}
		return nil
	},
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

func init() {
	confirmCmd.Flags().StringVar(&confirmDetections, "detections", "", "JSON file with classified detections (required)")
	confirmCmd.Flags().StringVar(&confirmDecisions, "decisions", "", "JSON file with decisions (required)")
	_ = confirmCmd.MarkFlagRequired("detections")
	_ = confirmCmd.MarkFlagRequired("decisions")
	rootCmd.AddCommand(confirmCmd)
}
