package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"energy-forecast/internal/app"
)

var forecastAt string

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Compute a one-shot forecast and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ForecastOptions{}
		if forecastAt != "" {
			at, err := time.Parse(time.RFC3339, forecastAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
			opts.At = &at
		}

		return getApp().Forecast(cmd.Context(), opts)
	},
}

func init() {
	forecastCmd.Flags().StringVar(&forecastAt, "at", "", "Reference instant (RFC 3339, default now)")
}
