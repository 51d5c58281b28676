// Package config loads the gatrack daemon configuration from YAML with
// GATRACK_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/gatrack/pkg/analytics"
	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/common/validation"
	"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GATRACK_"

// Client id store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the complete daemon configuration.
type Config struct {
	TrackingID string `yaml:"tracking_id"`

	// DeviceID seeds the client id when none is stored yet.
	DeviceID string `yaml:"device_id,omitempty"`

	App       AppConfig       `yaml:"app"`
	Endpoint  string          `yaml:"endpoint"`
	Limiter   LimiterConfig   `yaml:"limiter"`
	ClientID  ClientIDConfig  `yaml:"client_id"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Log       LogConfig       `yaml:"log"`
}

// AppConfig identifies the reporting application.
type AppConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LimiterConfig configures hit admission.
type LimiterConfig struct {
	Capacity   float64         `yaml:"capacity"`
	RefillRate float64         `yaml:"refill_rate"`
	Interval   bucket.Interval `yaml:"interval"`
	Policy     string          `yaml:"policy"`
}

// ClientIDConfig selects where the client id is kept.
type ClientIDConfig struct {
	Store     string        `yaml:"store"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisKey  string        `yaml:"redis_key"`
	RedisTTL  time.Duration `yaml:"redis_ttl,omitempty"`
}

// DispatchConfig sizes the asynchronous sender.
type DispatchConfig struct {
	Workers int           `yaml:"workers"`
	Queue   int           `yaml:"queue"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig controls Prometheus exposition.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// HeartbeatConfig schedules a periodic screen view. An empty schedule
// disables it.
type HeartbeatConfig struct {
	Schedule string `yaml:"schedule"`
	Screen   string `yaml:"screen"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used for anything a file leaves out.
func Default() *Config {
	lim := bucket.DefaultConfig()
	return &Config{
		Endpoint: analytics.DefaultEndpoint,
		Limiter: LimiterConfig{
			Capacity:   lim.Capacity,
			RefillRate: lim.RefillRate,
			Interval:   lim.Interval,
			Policy:     lim.Policy.String(),
		},
		ClientID: ClientIDConfig{
			Store:    StoreFile,
			Path:     "~/.gatrack/cid",
			RedisKey: "gatrack:cid",
		},
		Dispatch: DispatchConfig{
			Workers: 2,
			Queue:   64,
			Timeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9464",
		},
		Heartbeat: HeartbeatConfig{
			Schedule: "@every 1m",
			Screen:   "heartbeat",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewOperationError("config", "Load", err).WithContext(path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewOperationError("config", "Load", err).WithContext(path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewOperationError("config", "Parse", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TRACKING_ID":     &c.TrackingID,
		"DEVICE_ID":       &c.DeviceID,
		"ENDPOINT":        &c.Endpoint,
		"APP_ID":          &c.App.ID,
		"APP_NAME":        &c.App.Name,
		"APP_VERSION":     &c.App.Version,
		"LIMITER_POLICY":  &c.Limiter.Policy,
		"CLIENT_ID_STORE": &c.ClientID.Store,
		"CLIENT_ID_PATH":  &c.ClientID.Path,
		"REDIS_ADDR":      &c.ClientID.RedisAddr,
		"REDIS_KEY":       &c.ClientID.RedisKey,
		"METRICS_ADDR":    &c.Metrics.Addr,
		"HEARTBEAT":       &c.Heartbeat.Schedule,
		"LOG_LEVEL":       &c.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"LIMITER_CAPACITY":    &c.Limiter.Capacity,
		"LIMITER_REFILL_RATE": &c.Limiter.RefillRate,
	}
	for name, dst := range floats {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return errors.NewValidationError("config", EnvPrefix+name, v, "not a number")
			}
			*dst = f
		}
	}

	if v, ok := lookup(EnvPrefix + "LIMITER_INTERVAL"); ok {
		iv, err := bucket.ParseInterval(v)
		if err != nil {
			return err
		}
		c.Limiter.Interval = iv
	}
	if v, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidationError("config", EnvPrefix+"METRICS_ENABLED", v, "not a boolean")
		}
		c.Metrics.Enabled = b
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.ValidateNotEmpty("config", "tracking_id", c.TrackingID); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("config", "endpoint", c.Endpoint); err != nil {
		return err
	}
	if _, err := c.BucketConfig(); err != nil {
		return err
	}

	switch c.ClientID.Store {
	case StoreMemory:
	case StoreFile:
		if err := validation.ValidateNotEmpty("config", "client_id.path", c.ClientID.Path); err != nil {
			return err
		}
	case StoreRedis:
		if err := validation.ValidateNotEmpty("config", "client_id.redis_addr", c.ClientID.RedisAddr); err != nil {
			return err
		}
	default:
		return errors.NewValidationError("config", "client_id.store", c.ClientID.Store, "unknown store").
			WithHint("use memory, file or redis")
	}

	if err := validation.ValidatePositive("config", "dispatch.workers", c.Dispatch.Workers); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("config", "dispatch.queue", float64(c.Dispatch.Queue)); err != nil {
		return err
	}

	if c.Heartbeat.Schedule != "" {
		if _, err := cron.ParseStandard(c.Heartbeat.Schedule); err != nil {
			return errors.NewValidationError("config", "heartbeat.schedule", c.Heartbeat.Schedule, err.Error())
		}
		if err := validation.ValidateNotEmpty("config", "heartbeat.screen", c.Heartbeat.Screen); err != nil {
			return err
		}
	}

	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("config", "log.level", c.Log.Level, "unknown level")
	}
	return nil
}

// BucketConfig returns the limiter settings as a validated bucket.Config.
func (c *Config) BucketConfig() (bucket.Config, error) {
	policy, err := bucket.ParseRefillPolicy(c.Limiter.Policy)
	if err != nil {
		return bucket.Config{}, err
	}
	bc := bucket.Config{
		Capacity:   c.Limiter.Capacity,
		RefillRate: c.Limiter.RefillRate,
		Interval:   c.Limiter.Interval,
		Policy:     policy,
	}
	if err := bc.Validate(); err != nil {
		return bucket.Config{}, err
	}
	return bc, nil
}

// AppInfo combines the configured identity with a resolved client id.
func (c *Config) AppInfo(clientID string) analytics.AppInfo {
	return analytics.AppInfo{
		TrackingID: c.TrackingID,
		ClientID:   clientID,
		AppID:      c.App.ID,
		AppName:    c.App.Name,
		AppVersion: c.App.Version,
	}
}

// ClientIDPath returns the file store path with a leading ~ expanded.
func (c *Config) ClientIDPath() string {
	p := c.ClientID.Path
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Logger builds the configured zap logger.
func (l LogConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, errors.NewValidationError("config", "log.level", l.Level, "unknown level")
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
