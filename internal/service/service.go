package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/alerting"
	"energy-forecast/internal/config"
	"energy-forecast/internal/forecast"
	"energy-forecast/internal/metrics"
	"energy-forecast/internal/scheduler"
	"energy-forecast/internal/storage"
)

// Forecaster generates a 24-hour forecast for a request.
type Forecaster interface {
	Generate(ctx context.Context, req forecast.Request) (forecast.ForecastMap, error)
}

// Rollup is the externally served view of one derived value. Value is
// nil when the underlying forecast entry is missing.
type Rollup struct {
	Kind  string   `json:"kind"`
	Value *float64 `json:"value"`
}

// Snapshot is the result of one forecast run as served to consumers.
type Snapshot struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Forecast    forecast.ForecastMap `json:"forecast"`
	Rollups     []Rollup             `json:"rollups,omitempty"`
	Unavailable bool                 `json:"unavailable"`
}

// Service orchestrates scheduled forecast runs: it invokes the engine,
// derives rollups, publishes the snapshot, audits the run, and raises
// threshold alerts.
type Service struct {
	scheduler  *scheduler.Scheduler
	engine     Forecaster
	calculator *forecast.Calculator
	runStore   storage.RunStore
	notifier   alerting.Notifier
	metrics    *metrics.Set
	logger     zerolog.Logger

	meters     []string
	excluded   []string
	calendarID string
	location   *time.Location

	alertsOn     bool
	thresholdKWh float64
	cooldown     time.Duration
	channels     []string
	locker       storage.AdvisoryLocker
	lockKey      int64

	mu          sync.RWMutex
	latest      Snapshot
	hasSnapshot bool
	lastAlert   time.Time
}

// New constructs the forecast service.
func New(cfg *config.Config, sched *scheduler.Scheduler, engine Forecaster, calculator *forecast.Calculator, runStore storage.RunStore, notifier alerting.Notifier, metricsSet *metrics.Set, location *time.Location, logger zerolog.Logger) *Service {
	if location == nil {
		location = time.Local
	}

	var locker storage.AdvisoryLocker
	if l, ok := runStore.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:    sched,
		engine:       engine,
		calculator:   calculator,
		runStore:     runStore,
		notifier:     notifier,
		metrics:      metricsSet,
		logger:       logger.With().Str("component", "service").Logger(),
		meters:       cfg.Forecast.Meters,
		excluded:     cfg.Forecast.ExcludedEntities,
		calendarID:   cfg.Forecast.VacationCalendar,
		location:     location,
		alertsOn:     cfg.Alerting.Enabled,
		thresholdKWh: cfg.Alerting.ThresholdKWh,
		cooldown:     cfg.Alerting.Cooldown,
		channels:     cfg.Alerting.Channels,
		locker:       locker,
		lockKey:      cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the aligned recomputation loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessBucket)
}

// ProcessBucket executes one scheduled recomputation.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	_, err = s.Refresh(ctx, bucket)
	return err
}

// Refresh runs the full pipeline at the given reference instant and
// publishes the resulting snapshot. A run without usable history yields
// an unavailable snapshot, never an error; the only error returned is
// context cancellation.
func (s *Service) Refresh(ctx context.Context, now time.Time) (Snapshot, error) {
	now = now.In(s.location)
	started := time.Now()

	fm, err := s.engine.Generate(ctx, forecast.Request{
		Now:        now,
		Meters:     s.meters,
		Excluded:   s.excluded,
		CalendarID: s.calendarID,
	})
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := s.buildSnapshot(now, fm)
	s.publish(snapshot)
	s.observe(snapshot, time.Since(started))
	s.audit(ctx, snapshot)

	if !snapshot.Unavailable {
		s.maybeAlert(ctx, snapshot)
	}

	s.logger.Info().Time("generated_at", now).
		Int("points", len(fm)).
		Bool("unavailable", snapshot.Unavailable).
		Msg("forecast refreshed")
	return snapshot, nil
}

// Latest returns the most recent snapshot, if any run has completed.
func (s *Service) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasSnapshot
}

func (s *Service) buildSnapshot(now time.Time, fm forecast.ForecastMap) Snapshot {
	snapshot := Snapshot{GeneratedAt: now, Forecast: fm}
	if len(fm) == 0 {
		snapshot.Unavailable = true
		return snapshot
	}

	for _, kind := range forecast.RollupKinds() {
		result := s.calculator.Compute(kind, fm, now)
		rollup := Rollup{Kind: kind.String()}
		if result.Valid {
			value := result.Value
			rollup.Value = &value
		}
		snapshot.Rollups = append(snapshot.Rollups, rollup)
	}
	return snapshot
}

func (s *Service) publish(snapshot Snapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.hasSnapshot = true
	s.mu.Unlock()
}

func (s *Service) observe(snapshot Snapshot, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	status := storage.RunStatusComplete
	if snapshot.Unavailable {
		status = storage.RunStatusUnavailable
	}
	s.metrics.RunsTotal.WithLabelValues(status).Inc()
	s.metrics.RunDuration.Observe(elapsed.Seconds())
	s.metrics.ForecastPoints.Set(float64(len(snapshot.Forecast)))
	for _, rollup := range snapshot.Rollups {
		if rollup.Value != nil {
			s.metrics.RollupValue.WithLabelValues(rollup.Kind).Set(*rollup.Value)
		}
	}
}

func (s *Service) audit(ctx context.Context, snapshot Snapshot) {
	if s.runStore == nil {
		return
	}

	status := storage.RunStatusComplete
	if snapshot.Unavailable {
		status = storage.RunStatusUnavailable
	}
	run := storage.ForecastRun{
		RunAt:  snapshot.GeneratedAt,
		Meters: len(s.meters),
		Points: len(snapshot.Forecast),
		Status: status,
	}
	if _, err := s.runStore.InsertRun(ctx, run); err != nil {
		s.logger.Error().Err(err).Time("run_at", snapshot.GeneratedAt).Msg("failed to persist run audit row")
	}
}

func (s *Service) maybeAlert(ctx context.Context, snapshot Snapshot) {
	if !s.alertsOn || s.notifier == nil || s.thresholdKWh <= 0 {
		return
	}

	projected, ok := snapshot.rollupValue(forecast.RollupTomorrow.String())
	if !ok || projected <= s.thresholdKWh {
		return
	}
	if !s.lastAlert.IsZero() && snapshot.GeneratedAt.Sub(s.lastAlert) < s.cooldown {
		return
	}

	note := alerting.Notification{
		GeneratedAt:  snapshot.GeneratedAt,
		RollupKind:   forecast.RollupTomorrow.String(),
		ProjectedKWh: projected,
		ThresholdKWh: s.thresholdKWh,
		Channels:     s.channels,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Time("generated_at", snapshot.GeneratedAt).Msg("failed to dispatch alert")
		return
	}
	s.lastAlert = snapshot.GeneratedAt
}

func (s Snapshot) rollupValue(kind string) (float64, bool) {
	for _, rollup := range s.Rollups {
		if rollup.Kind == kind && rollup.Value != nil {
			return *rollup.Value, true
		}
	}
	return 0, false
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
