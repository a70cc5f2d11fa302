package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jwalitptl/facility-api/pkg/apiclient"
)

// EnvPrefix prefixes every environment override, e.g. FACILITY_SERVER_PORT.
const EnvPrefix = "FACILITY"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Seed      SeedConfig      `mapstructure:"seed"`

	Notifications NotificationConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	Issuer     string        `mapstructure:"issuer"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// SessionStore is "memory" or "redis".
	SessionStore string `mapstructure:"session_store"`
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	// PublishNotifications fans feed entries out on the notifications channel.
	PublishNotifications bool `mapstructure:"publish_notifications"`
}

// RemoteConfig enables the remote authenticator in front of the local tables.
type RemoteConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	MaxFailures    int           `mapstructure:"max_failures"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// NotificationConfig bounds how long feed entries live. A zero retention
// keeps entries forever.
type NotificationConfig struct {
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type SeedConfig struct {
	Notifications bool `mapstructure:"notifications"`
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Auth.SessionStore == "redis" || c.Redis.PublishNotifications
}

// APIClient returns the REST collaborator settings.
func (c *Config) APIClient() apiclient.Config {
	return apiclient.Config{
		BaseURL:    c.Remote.BaseURL,
		Timeout:    c.Remote.Timeout,
		RetryCount: c.Remote.RetryCount,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "facility-api")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.session_store", "memory")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.publish_notifications", false)

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.base_url", apiclient.DefaultBaseURL)
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.retry_count", 0)
	v.SetDefault("remote.max_failures", 5)
	v.SetDefault("remote.breaker_timeout", 30*time.Second)

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("metrics.namespace", "facility")
	v.SetDefault("seed.notifications", true)

	v.SetDefault("notifications.retention", 30*24*time.Hour)
	v.SetDefault("notifications.cleanup_interval", time.Hour)
}

// LoadConfig reads config.yaml from path (or . and ./config when empty),
// applies FACILITY_* environment overrides and validates the result. A
// missing file is not an error unless path names it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// FACILITY_API_URL and friends override the remote block as a unit
	if _, ok := os.LookupEnv(EnvPrefix + "_API_URL"); ok {
		remote, err := apiclient.LoadConfigFromEnv(EnvPrefix)
		if err != nil {
			return nil, err
		}
		config.Remote.BaseURL = remote.BaseURL
		config.Remote.Timeout = remote.Timeout
		config.Remote.RetryCount = remote.RetryCount
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Auth.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Auth.SessionStore)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	if c.Notifications.Retention > 0 && c.Notifications.CleanupInterval <= 0 {
		return errors.New("notifications.cleanup_interval must be positive when retention is set")
	}
	if c.Remote.Enabled && c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required when the remote authenticator is enabled")
	}
	return nil
}
