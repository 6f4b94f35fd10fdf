package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"energy-forecast/internal/app"
)

var (
	exportCSV       string
	exportPNG       string
	exportAt        string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the forecast window as CSV and/or PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			CSVPath:   exportCSV,
			PNGPath:   exportPNG,
			MaxPoints: exportMaxPoints,
		}
		if exportAt != "" {
			at, err := time.Parse(time.RFC3339, exportAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
			opts.At = &at
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "Write the forecast window to this CSV file")
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "Render history and forecast to this PNG file")
	exportCmd.Flags().StringVar(&exportAt, "at", "", "Reference instant (RFC 3339, default now)")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Cap on history points (default from config)")
}
