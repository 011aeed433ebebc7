package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"` // "dev" | "prod"
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Store    StoreConfig    `mapstructure:"store"`
	Site     SiteConfig     `mapstructure:"site"`
	Access   AccessConfig   `mapstructure:"access"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Log      LogConfig      `mapstructure:"log"`
	Seed     bool           `mapstructure:"seed"` // load demo fixtures on serve
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	AllowOrigin []string `mapstructure:"allow_origins"`
	// RateLimit is requests per second per client IP. 0 disables it.
	RateLimit int `mapstructure:"rate_limit"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the terminal listener
	// TerminalRPS and TerminalBurst bound Evaluate calls per terminal.
	TerminalRPS   float64 `mapstructure:"terminal_rps"`
	TerminalBurst int     `mapstructure:"terminal_burst"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "memory" | "sqlite"
	DBPath  string `mapstructure:"db_path"`
}

type SiteConfig struct {
	// Timezone is the IANA zone whose wall clock schedules are written in.
	Timezone string `mapstructure:"timezone"`
}

type AccessConfig struct {
	AllowUnassigned  bool   `mapstructure:"allow_unassigned"`
	OnScheduleDelete string `mapstructure:"on_schedule_delete"` // "restrict" | "cascade"
}

type TerminalConfig struct {
	OfflineAfter  time.Duration `mapstructure:"offline_after"` // 0 disables the sweeper
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"` // empty disables publishing
	Exchange string `mapstructure:"exchange"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
}

// Load reads configuration from defaults, an optional YAML file and
// PORTUNUS_* environment variables, in increasing priority. A .env file in
// the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allow_origins", []string{"*"})
	v.SetDefault("http.rate_limit", 50)
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("grpc.terminal_rps", 5.0)
	v.SetDefault("grpc.terminal_burst", 10)
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.db_path", "./data/qr-access-nexus.db")
	v.SetDefault("site.timezone", "UTC")
	v.SetDefault("access.allow_unassigned", false)
	v.SetDefault("access.on_schedule_delete", "restrict")
	v.SetDefault("terminal.offline_after", "5m")
	v.SetDefault("terminal.sweep_interval", "1m")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "access.events")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("seed", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PORTUNUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Env = strings.ToLower(cfg.Env)
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Access.OnScheduleDelete = strings.ToLower(strings.TrimSpace(cfg.Access.OnScheduleDelete))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: store.backend must be memory or sqlite, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "sqlite" && strings.TrimSpace(c.Store.DBPath) == "" {
		return errors.New("config: store.db_path is required for the sqlite backend")
	}
	switch c.Access.OnScheduleDelete {
	case "restrict", "cascade":
	default:
		return fmt.Errorf("config: access.on_schedule_delete must be restrict or cascade, got %q", c.Access.OnScheduleDelete)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.HTTP.Addr == "" {
		return errors.New("config: http.addr is required")
	}
	if c.Terminal.OfflineAfter < 0 {
		return errors.New("config: terminal.offline_after must not be negative")
	}
	return nil
}

// Location resolves the site timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: site.timezone: %w", err)
	}
	return loc, nil
}
