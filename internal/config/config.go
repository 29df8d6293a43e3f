// Package config loads the canvas settings from an optional canvas.yaml,
// CANVAS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "canvas"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "canvas"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "CANVAS"
)

// Config is the full application configuration.
type Config struct {
	// ComponentsDir holds the component definition files.
	ComponentsDir string `mapstructure:"components_dir"`
	// SiteBaseURL resolves default-relative-url prop sources.
	SiteBaseURL string `mapstructure:"site_base_url"`
	// Listen is the HTTP listen address of "canvas serve".
	Listen string `mapstructure:"listen"`
	// Watch reloads component definitions when their files change.
	Watch bool `mapstructure:"watch"`

	Redis RedisConfig `mapstructure:"redis"`
	Log   LogConfig   `mapstructure:"log"`
}

// RedisConfig selects the Redis draft store. An empty Addr keeps drafts in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		ComponentsDir: "components",
		SiteBaseURL:   "http://localhost",
		Listen:        ":8080",
		Redis: RedisConfig{
			Prefix: "canvas:draft:",
			TTL:    7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"components-dir": "components_dir",
	"site-base-url":  "site_base_url",
	"listen":         "listen",
	"watch":          "watch",
	"redis-addr":     "redis.addr",
	"redis-prefix":   "redis.prefix",
	"redis-ttl":      "redis.ttl",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// LoadOptions control where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file. It must exist when set.
	ConfigFile string
	// SearchPaths are searched for canvas.yaml when ConfigFile is empty.
	// Defaults to the working directory.
	SearchPaths []string
	// Flags, when set, override file and environment values for every flag
	// that was changed on the command line.
	Flags *pflag.FlagSet
}

// Load builds the configuration. It returns the config file used, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("components_dir", defaults.ComponentsDir)
	v.SetDefault("site_base_url", defaults.SiteBaseURL)
	v.SetDefault("listen", defaults.Listen)
	v.SetDefault("watch", defaults.Watch)
	v.SetDefault("redis.addr", defaults.Redis.Addr)
	v.SetDefault("redis.password", defaults.Redis.Password)
	v.SetDefault("redis.db", defaults.Redis.DB)
	v.SetDefault("redis.prefix", defaults.Redis.Prefix)
	v.SetDefault("redis.ttl", defaults.Redis.TTL)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
		resolvedPath = opts.ConfigFile
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			resolvedPath = v.ConfigFileUsed()
		case errors.As(err, &notFound):
			// If no config file found, use defaults (no error)
		default:
			return nil, "", fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.SiteBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site_base_url must be an absolute URL, got %q", c.SiteBaseURL)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// BaseURL returns the parsed site base URL.
func (c *Config) BaseURL() *url.URL {
	u, _ := url.Parse(c.SiteBaseURL)
	return u
}

// RegisterFlags declares every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("components-dir", d.ComponentsDir, "Directory of component definition files")
	fs.String("site-base-url", d.SiteBaseURL, "Absolute base URL of the site")
	fs.String("listen", d.Listen, "HTTP listen address")
	fs.Bool("watch", d.Watch, "Reload component definitions when files change")
	fs.String("redis-addr", d.Redis.Addr, "Redis address for drafts (empty keeps drafts in memory)")
	fs.String("redis-prefix", d.Redis.Prefix, "Redis key prefix for drafts")
	fs.Duration("redis-ttl", d.Redis.TTL, "Expiry of drafts stored in Redis")
	fs.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.Log.Format, "Log format (text, json)")
}
