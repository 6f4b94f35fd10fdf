package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/alerting"
	"energy-forecast/internal/api"
	"energy-forecast/internal/config"
	"energy-forecast/internal/forecast"
	"energy-forecast/internal/metrics"
	"energy-forecast/internal/scheduler"
	"energy-forecast/internal/service"
	"energy-forecast/internal/source"
	"energy-forecast/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) timeLocation() *time.Location {
	loc, err := a.Config.Location.TimeLocation()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("falling back to local timezone")
		return time.Local
	}
	return loc
}

func (a *App) newEngine(store *storage.Store) *forecast.Engine {
	stats := source.NewStatistics(store, a.Logger)

	calendar := source.NewCalendar(source.CalendarOptions{
		BaseURL:   a.Config.Calendar.BaseURL,
		AuthToken: a.Config.Calendar.AuthToken,
		UserAgent: a.Config.Calendar.UserAgent,
		Timeout:   a.Config.Calendar.RequestTimeout,
	}, a.Logger)

	return forecast.NewEngine(stats, calendar, forecast.EngineOptions{
		Policy: a.Config.Forecast.AggregationPolicy(),
		Window: a.Config.Forecast.Window(),
	}, a.Logger)
}

func (a *App) newCalculator(loc *time.Location) *forecast.Calculator {
	astro := source.NewAstro(a.Config.Location.Latitude, a.Config.Location.Longitude, loc)
	return forecast.NewCalculator(astro)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running forecast service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; the recorder database is required")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	loc := a.timeLocation()
	engine := a.newEngine(store)
	calculator := a.newCalculator(loc)
	notifier := a.newNotifier()
	metricsSet := metrics.NewSet()

	svc := service.New(a.Config, sched, engine, calculator, store, notifier, metricsSet, loc, a.Logger)

	if a.Config.API.Enabled {
		server := api.NewServer(a.Config.API.Listen, svc, metricsSet.Handler(), a.Logger)
		go func() {
			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error().Err(err).Msg("api server terminated with error")
			}
		}()
	}

	// Compute an initial snapshot so consumers see data before the
	// first aligned bucket fires.
	if _, err := svc.Refresh(ctx, time.Now().In(loc)); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	a.Logger.Info().Msg("starting forecast service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("forecast service stopped")
	return nil
}

// ForecastOptions configure a one-shot forecast computation.
type ForecastOptions struct {
	At *time.Time
}

// ExportOptions hold parameters for exporting the forecast window.
type ExportOptions struct {
	At        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SeedOptions configure the statistics import job.
type SeedOptions struct {
	Path   string
	Kind   string
	DryRun bool
}
