// Package config loads server configuration from an optional YAML file and
// TRUCO_ prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRUCO_SERVER_PORT
const EnvPrefix = "TRUCO"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Game    GameConfig    `mapstructure:"game"`
	NATS    NATSConfig    `mapstructure:"nats"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Type string `mapstructure:"type"` // memory or redis
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	RoomTTL      time.Duration `mapstructure:"room_ttl"`
}

type GameConfig struct {
	WinningScore    int           `mapstructure:"winning_score"`
	HandDelay       time.Duration `mapstructure:"hand_delay"`
	IdleRoomTTL     time.Duration `mapstructure:"idle_room_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	SessionDuration time.Duration `mapstructure:"session_duration"`

	// ShuffleSeed makes every deal reproducible when non-zero. Session
	// tokens stay cryptographically random.
	ShuffleSeed uint64 `mapstructure:"shuffle_seed"`
}

// NATSConfig configures the external event bus. An empty URL disables it.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

var defaults = map[string]any{
	"server.host":             "",
	"server.port":             8080,
	"server.read_timeout":     15 * time.Second,
	"server.write_timeout":    time.Duration(0), // SSE and websockets are long-lived
	"server.idle_timeout":     60 * time.Second,
	"server.shutdown_timeout": 30 * time.Second,

	"log.level": "info",

	"storage.type": "memory",

	"redis.url":            "redis://localhost:6379/0",
	"redis.pool_size":      10,
	"redis.min_idle_conns": 2,
	"redis.room_ttl":       12 * time.Hour,

	"game.winning_score":    12,
	"game.hand_delay":       3 * time.Second,
	"game.idle_room_ttl":    30 * time.Minute,
	"game.sweep_interval":   time.Minute,
	"game.session_duration": 24 * time.Hour,
	"game.shuffle_seed":     0,

	"nats.url":            "",
	"nats.subject_prefix": "truco",
	"nats.max_reconnects": 10,
	"nats.reconnect_wait": 2 * time.Second,
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Game.WinningScore <= 0 {
		return fmt.Errorf("winning score must be positive, got %d", c.Game.WinningScore)
	}
	if c.Game.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Game.SweepInterval)
	}
	return nil
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
