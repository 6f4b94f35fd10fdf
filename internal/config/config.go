package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"energy-forecast/internal/forecast"
	"energy-forecast/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Location  LocationConfig  `mapstructure:"location"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	API       APIConfig       `mapstructure:"api"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the recorder
// database that holds hourly meter statistics.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs recomputation cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// ForecastConfig selects the meters and learning window.
type ForecastConfig struct {
	Meters           []string `mapstructure:"meters"`
	ExcludedEntities []string `mapstructure:"excluded_entities"`
	VacationCalendar string   `mapstructure:"vacation_calendar"`
	WindowDays       int      `mapstructure:"window_days"`
	Policy           string   `mapstructure:"policy"`
}

// AggregationPolicy maps the configured policy name onto the engine's
// policy parameter.
func (c ForecastConfig) AggregationPolicy() forecast.AggregationPolicy {
	if strings.EqualFold(c.Policy, "mean") {
		return forecast.PolicyMeanPassthrough
	}
	return forecast.PolicySum
}

// Window returns the configured learning window as a duration.
func (c ForecastConfig) Window() time.Duration {
	if c.WindowDays <= 0 {
		return forecast.DefaultWindow
	}
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// CalendarConfig captures vacation calendar API connectivity.
type CalendarConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AuthToken      string        `mapstructure:"auth_token"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LocationConfig fixes the observer position for solar events.
type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Timezone  string  `mapstructure:"timezone"`
}

// TimeLocation resolves the configured timezone, defaulting to the
// process-local zone.
func (c LocationConfig) TimeLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AlertingConfig defines alert thresholds and routing.
type AlertingConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	ThresholdKWh float64        `mapstructure:"threshold_kwh"`
	Cooldown     time.Duration  `mapstructure:"cooldown"`
	Channels     []string       `mapstructure:"channels"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram alert channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// APIConfig sets the HTTP listener serving forecasts and metrics.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NRGFORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "nrgforecast")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x6e726763))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("forecast.window_days", 30)
	v.SetDefault("forecast.policy", "sum")

	v.SetDefault("calendar.request_timeout", "10s")
	v.SetDefault("calendar.user_agent", "nrgforecast/1.0")

	v.SetDefault("location.timezone", "")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.threshold_kwh", 0.0)
	v.SetDefault("alerting.cooldown", "6h")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.listen", ":8787")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Forecast.WindowDays <= 0 {
		return fmt.Errorf("forecast.window_days must be greater than zero")
	}
	if policy := strings.ToLower(c.Forecast.Policy); policy != "sum" && policy != "mean" {
		return fmt.Errorf("forecast.policy must be sum or mean")
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude out of range")
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude out of range")
	}
	if c.Alerting.ThresholdKWh < 0 {
		return fmt.Errorf("alerting.threshold_kwh cannot be negative")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
