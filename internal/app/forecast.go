package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"energy-forecast/internal/service"
)

// Forecast computes a one-shot forecast and prints it as JSON.
func (a *App) Forecast(ctx context.Context, opts ForecastOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot forecast")
	}
	if closeStore != nil {
		defer closeStore()
	}

	loc := a.timeLocation()
	at := time.Now().In(loc)
	if opts.At != nil {
		at = opts.At.In(loc)
	}

	svc := service.New(a.Config, nil, a.newEngine(store), a.newCalculator(loc), nil, nil, nil, loc, a.Logger)
	snapshot, err := svc.Refresh(ctx, at)
	if err != nil {
		return err
	}
	if snapshot.Unavailable {
		a.Logger.Warn().Msg("no historical statistics; forecast unavailable")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
