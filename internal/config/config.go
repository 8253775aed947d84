package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL = "http://localhost:8080"
	HealthPath    = "/api/health"

	// EnvAPIURL is the override recognised for the base address.
	EnvAPIURL   = "REACT_APP_API_URL"
	envPrefix   = "HEALTHVIEW"
	configName  = "config"
	configType  = "json"
	keyAPIURL   = "api_url"
	keyLogLevel = "log_level"
	keyTimeout  = "timeout"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigDir   = filepath.Join(home, ".healthview")
	DefaultConfigPath  = filepath.Join(DefaultConfigDir, "config.json")
	DefaultLogFilePath = filepath.Join(DefaultConfigDir, "logs", "healthview.log")
)

var ErrInvalidLogLevel = errors.New("config: invalid log level")

// dotEnvFiles are read from the working directory, earlier files first.
// Variables already present in the environment are never replaced.
var dotEnvFiles = []string{".env.local", ".env"}

// Config is resolved once at startup and never mutated afterwards.
type Config struct {
	APIURL   string        `json:"api_url" mapstructure:"api_url"`
	LogLevel string        `json:"log_level" mapstructure:"log_level"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	Path     string        `json:"-" mapstructure:"-"`
}

// Validate normalizes the settings. The base address is not checked here: a
// malformed one surfaces as a failed request.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")

	switch strings.ToLower(c.LogLevel) {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return fmt.Errorf("%w %q", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Timeout < 0 {
		c.Timeout = 0
	}

	return nil
}

// HealthURL is the request target: the base address followed by the fixed health path.
func (c *Config) HealthURL() string {
	return c.APIURL + HealthPath
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigPath is an explicit config file. When empty the default locations are searched
	// and a missing file is not an error.
	ConfigPath string
	// Flags may carry "api-url", "log-level" and "timeout"; only flags that were set on the
	// command line take precedence over the environment.
	Flags *pflag.FlagSet
}

// Load resolves the configuration. Precedence is flag, environment
// (REACT_APP_API_URL, then HEALTHVIEW_*), .env.local, .env, config file, default.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetDefault(keyAPIURL, DefaultAPIURL)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyTimeout, time.Duration(0))

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.AddConfigPath(DefaultConfigDir)
		v.AddConfigPath(filepath.Join(home, ".config", "healthview"))
		v.SetConfigName(configName)
		v.SetConfigType(configType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigPath != "" || (!errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(keyAPIURL, EnvAPIURL, envPrefix+"_API_URL"); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for key, flag := range map[string]string{keyAPIURL: "api-url", keyLogLevel: "log-level", keyTimeout: "timeout"} {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		APIURL:   v.GetString(keyAPIURL),
		LogLevel: v.GetString(keyLogLevel),
		Timeout:  v.GetDuration(keyTimeout),
		Path:     v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv() error {
	for _, file := range dotEnvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("dotenv '%s': %w", file, err)
		}
	}
	return nil
}
