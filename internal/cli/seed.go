package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"energy-forecast/internal/app"
)

var (
	seedFile   string
	seedKind   string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import hourly meter readings from a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFile == "" {
			return fmt.Errorf("--file is required")
		}

		opts := app.SeedOptions{
			Path:   seedFile,
			Kind:   seedKind,
			DryRun: seedDryRun,
		}

		return getApp().Seed(cmd.Context(), opts)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "CSV file with entity_id,start,value[,kind] rows")
	seedCmd.Flags().StringVar(&seedKind, "kind", "sum", "Default statistic kind for rows without one")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Validate the file without writing")
}
