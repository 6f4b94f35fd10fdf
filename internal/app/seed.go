package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"energy-forecast/internal/storage"
)

// Seed imports hourly meter readings from a CSV file into the recorder
// database. Rows are entity_id,start,value with an optional fourth kind
// column (sum or mean).
func (a *App) Seed(ctx context.Context, opts SeedOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot seed")
	}
	if closeStore != nil {
		defer closeStore()
	}

	file, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var imported, skipped int
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		if line == 1 && isHeaderRow(record) {
			continue
		}

		stat, err := parseSeedRow(record, opts.Kind)
		if err != nil {
			a.Logger.Warn().Err(err).Int("line", line).Msg("skipping seed row")
			skipped++
			continue
		}

		if opts.DryRun {
			imported++
			continue
		}
		if err := store.UpsertStatistic(ctx, stat); err != nil {
			return err
		}
		imported++
	}

	a.Logger.Info().Int("imported", imported).Int("skipped", skipped).Bool("dry_run", opts.DryRun).Msg("seed finished")
	return nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "entity_id")
}

// parseSeedRow converts one CSV row into a statistic. The timestamp is
// normalised to the hour; the default kind applies when the row carries
// none.
func parseSeedRow(record []string, defaultKind string) (storage.MeterStatistic, error) {
	if len(record) < 3 {
		return storage.MeterStatistic{}, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}

	entity := strings.TrimSpace(record[0])
	if entity == "" {
		return storage.MeterStatistic{}, errors.New("empty entity id")
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
	if err != nil {
		return storage.MeterStatistic{}, fmt.Errorf("parse start: %w", err)
	}

	value, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return storage.MeterStatistic{}, fmt.Errorf("parse value: %w", err)
	}

	kind := defaultKind
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		kind = strings.TrimSpace(record[3])
	}
	if kind != "sum" && kind != "mean" {
		return storage.MeterStatistic{}, fmt.Errorf("unknown statistic kind %q", kind)
	}

	return storage.MeterStatistic{
		EntityID: entity,
		Bucket:   start.Truncate(time.Hour),
		Value:    value,
		Kind:     kind,
	}, nil
}
