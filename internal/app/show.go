package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints recent forecast runs and a summary of stored statistics.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show runs")
	}
	if closeStore != nil {
		defer closeStore()
	}

	count, err := store.CountStatistics(ctx)
	if err != nil {
		return err
	}
	entities, err := store.ListEntities(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "statistics: %d rows across %d entities\n\n", count, len(entities))

	runs, err := store.ListRecentRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no forecast runs recorded")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Run At\tMeters\tPoints\tStatus\tError")

	for _, run := range runs {
		errMsg := ""
		if run.Error != nil {
			errMsg = *run.Error
		}
		fmt.Fprintf(writer, "%s\t%d\t%d\t%s\t%s\n",
			run.RunAt.Format(time.RFC3339),
			run.Meters,
			run.Points,
			run.Status,
			errMsg,
		)
	}

	return writer.Flush()
}
