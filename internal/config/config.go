// Package config loads and watches the SnowGate configuration. A single
// YAML file plus SNOWGATE_* environment overrides drive every component;
// the file is optional when the environment carries everything.
package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/snowgate-io/snowgate-ce/internal/auth"
	"github.com/snowgate-io/snowgate-ce/internal/cache"
	"github.com/snowgate-io/snowgate-ce/internal/catalog/analytics"
)

var (
	cfg *Config
	mu  sync.RWMutex
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	ServiceNow ServiceNowConfig `mapstructure:"servicenow"`
	Cache      cache.Config     `mapstructure:"cache"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Analysis   analytics.Config `mapstructure:"analysis"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AuthToken protects the /mcp endpoint. Empty disables the check,
	// which is only sensible on a loopback deployment.
	AuthToken string `mapstructure:"auth_token"`
	// JWTSecret enables bearer JWT validation as an alternative to the
	// static token.
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ServiceNowConfig identifies the instance and how to authenticate
// against it.
type ServiceNowConfig struct {
	InstanceURL string        `mapstructure:"instance_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Auth        auth.Config   `mapstructure:"auth"`
}

// SchedulerConfig drives the periodic recommendation run.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Spec is a cron expression, e.g. "0 6 * * 1" for Mondays at 06:00.
	Spec string `mapstructure:"spec"`
	// Window is the analysis window each scheduled run uses.
	Window string `mapstructure:"window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "snowgate")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("servicenow.timeout", 30*time.Second)
	v.SetDefault("servicenow.auth.type", string(auth.TypeBasic))

	// Viper only overlays environment variables onto keys it already
	// knows about, so every env-settable key needs a default.
	v.SetDefault("servicenow.instance_url", "")
	v.SetDefault("servicenow.auth.basic.username", "")
	v.SetDefault("servicenow.auth.basic.password", "")
	v.SetDefault("servicenow.auth.oauth.client_id", "")
	v.SetDefault("servicenow.auth.oauth.client_secret", "")
	v.SetDefault("servicenow.auth.oauth.username", "")
	v.SetDefault("servicenow.auth.oauth.password", "")
	v.SetDefault("servicenow.auth.oauth.token_url", "")
	v.SetDefault("servicenow.auth.api_key.key", "")
	v.SetDefault("servicenow.auth.api_key.header_name", "")
	v.SetDefault("server.auth_token", "")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.prefix", "snowgate")
	v.SetDefault("scheduler.spec", "0 6 * * 1")
	v.SetDefault("scheduler.window", "last_90_days")

	defaults := analytics.DefaultConfig()
	v.SetDefault("analysis.low_usage_percentile", defaults.LowUsagePercentile)
	v.SetDefault("analysis.abandonment_threshold", defaults.AbandonmentThreshold)
	v.SetDefault("analysis.minimum_sample_size", defaults.MinimumSampleSize)
	v.SetDefault("analysis.slow_fulfillment_ratio", defaults.SlowFulfillmentRatio)
	v.SetDefault("analysis.min_description_length", defaults.MinDescriptionLength)
	v.SetDefault("analysis.min_category_items", defaults.MinCategoryItems)
	v.SetDefault("analysis.max_category_items", defaults.MaxCategoryItems)
	v.SetDefault("analysis.max_category_depth", defaults.MaxCategoryDepth)
	v.SetDefault("analysis.similarity_threshold", defaults.SimilarityThreshold)
}

// Load reads configuration from configFile (optional, "" for environment
// only) and starts watching it for changes.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SNOWGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	cfg = c
	mu.Unlock()

	if configFile != "" {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			newCfg := &Config{}
			if err := v.Unmarshal(newCfg); err != nil {
				log.Printf("config reload failed: %v", err)
				return
			}
			if err := newCfg.Validate(); err != nil {
				log.Printf("config reload rejected: %v", err)
				return
			}
			mu.Lock()
			cfg = newCfg
			mu.Unlock()
			log.Printf("configuration reloaded from %s", e.Name)
		})
	}

	return c, nil
}

// Get returns the current configuration (thread-safe).
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Validate fails fast on a configuration the server cannot run with.
func (c *Config) Validate() error {
	if c.ServiceNow.InstanceURL == "" {
		return fmt.Errorf("servicenow.instance_url is required")
	}
	if !strings.HasPrefix(c.ServiceNow.InstanceURL, "http://") &&
		!strings.HasPrefix(c.ServiceNow.InstanceURL, "https://") {
		return fmt.Errorf("servicenow.instance_url must be an http(s) URL")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if err := c.ServiceNow.Auth.Validate(); err != nil {
		return fmt.Errorf("servicenow.auth: %w", err)
	}
	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		return fmt.Errorf("scheduler.spec is required when the scheduler is enabled")
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// Addr returns the server listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the app runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
