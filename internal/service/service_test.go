package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/alerting"
	"energy-forecast/internal/config"
	"energy-forecast/internal/forecast"
)

type stubForecaster struct {
	fm  forecast.ForecastMap
	err error
}

func (s *stubForecaster) Generate(_ context.Context, _ forecast.Request) (forecast.ForecastMap, error) {
	return s.fm, s.err
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Forecast.Meters = []string{"sensor.house"}
	cfg.Scheduler.Interval = time.Hour
	return cfg
}

func flatWindow(now time.Time, value float64) forecast.ForecastMap {
	fm := make(forecast.ForecastMap, 24)
	for offset := 0; offset < 24; offset++ {
		fm[forecast.Key(now.Add(time.Duration(offset)*time.Hour))] = value
	}
	return fm
}

func TestRefreshPublishesSnapshotWithRollups(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	engine := &stubForecaster{fm: flatWindow(now, 1.0)}

	svc := New(testConfig(), nil, engine, forecast.NewCalculator(nil), nil, nil, nil, time.UTC, zerolog.Nop())
	snapshot, err := svc.Refresh(context.Background(), now)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if snapshot.Unavailable {
		t.Fatal("snapshot must be available")
	}
	if len(snapshot.Rollups) != len(forecast.RollupKinds()) {
		t.Fatalf("expected %d rollups, got %d", len(forecast.RollupKinds()), len(snapshot.Rollups))
	}

	value, ok := snapshot.rollupValue("next_hour")
	if !ok || value != 1.0 {
		t.Fatalf("next_hour = (%v, %v), expected 1.0", value, ok)
	}

	latest, ok := svc.Latest()
	if !ok || latest.GeneratedAt != now {
		t.Fatalf("Latest() must return the published snapshot, got %+v", latest)
	}
}

func TestRefreshEmptyForecastIsUnavailable(t *testing.T) {
	engine := &stubForecaster{fm: forecast.ForecastMap{}}

	svc := New(testConfig(), nil, engine, forecast.NewCalculator(nil), nil, nil, nil, time.UTC, zerolog.Nop())
	snapshot, err := svc.Refresh(context.Background(), time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if !snapshot.Unavailable {
		t.Fatal("empty forecast must mark the snapshot unavailable")
	}
	if len(snapshot.Rollups) != 0 {
		t.Fatal("no rollups expected for an unavailable snapshot")
	}
}

func TestRefreshAlertsAboveThreshold(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	engine := &stubForecaster{fm: flatWindow(now, 5.0)}
	notifier := &recordingNotifier{}

	cfg := testConfig()
	cfg.Alerting.Enabled = true
	cfg.Alerting.ThresholdKWh = 10.0
	cfg.Alerting.Cooldown = 6 * time.Hour

	svc := New(cfg, nil, engine, forecast.NewCalculator(nil), nil, notifier, nil, time.UTC, zerolog.Nop())
	if _, err := svc.Refresh(context.Background(), now); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	// tomorrow covers 00:00-09:00 of June 4 at 5.0 each = 50.0 > 10.0.
	if len(notifier.notes) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.notes))
	}
	if notifier.notes[0].RollupKind != "tomorrow" {
		t.Fatalf("alert must reference the tomorrow rollup, got %q", notifier.notes[0].RollupKind)
	}

	// Within the cooldown a second run must not alert again.
	if _, err := svc.Refresh(context.Background(), now.Add(time.Hour)); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("cooldown must suppress the second alert, got %d", len(notifier.notes))
	}
}
