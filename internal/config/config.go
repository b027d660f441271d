// Package config loads testscope settings from a config file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TESTSCOPE_JIRA_TOKEN.
const EnvPrefix = "TESTSCOPE"

// Config is the complete testscope configuration.
type Config struct {
	Jira         JiraConfig       `mapstructure:"jira" json:"jira"`
	GitHub       GitHubConfig     `mapstructure:"github" json:"github"`
	TestRail     TestRailConfig   `mapstructure:"testrail" json:"testrail"`
	Traceability PathConfig       `mapstructure:"traceability" json:"traceability"`
	Vocabulary   PathConfig       `mapstructure:"vocabulary" json:"vocabulary"`
	Cache        CacheConfig      `mapstructure:"cache" json:"cache"`
	Server       ServerConfig     `mapstructure:"server" json:"server"`
	Log          LogConfig        `mapstructure:"log" json:"log"`
	Estimation   EstimationConfig `mapstructure:"estimation" json:"estimation"`
	HTTP         HTTPConfig       `mapstructure:"http" json:"http"`
}

// JiraConfig holds issue-tracker access.
type JiraConfig struct {
	BaseURL                 string `mapstructure:"baseURL" json:"baseURL"`
	Email                   string `mapstructure:"email" json:"email"`
	Token                   string `mapstructure:"token" json:"-"`
	AcceptanceCriteriaField string `mapstructure:"acceptanceCriteriaField" json:"acceptanceCriteriaField"`
}

// GitHubConfig holds source-control access.
type GitHubConfig struct {
	BaseURL string `mapstructure:"baseURL" json:"baseURL"`
	Token   string `mapstructure:"token" json:"-"`
}

// TestRailConfig holds test-repository access.
type TestRailConfig struct {
	BaseURL   string `mapstructure:"baseURL" json:"baseURL"`
	User      string `mapstructure:"user" json:"user"`
	APIKey    string `mapstructure:"apiKey" json:"-"`
	ProjectID int    `mapstructure:"projectID" json:"projectID"`
	SuiteID   int    `mapstructure:"suiteID" json:"suiteID"`
}

// PathConfig points at an optional data file. Empty means built-in defaults.
type PathConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// CacheConfig controls the inventory cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled"`
	Path    string        `mapstructure:"path" json:"path"`
	TTL     time.Duration `mapstructure:"ttl" json:"ttl"`
}

// ServerConfig controls `testscope serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
	Port int    `mapstructure:"port" json:"port"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Addr, s.Port)
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// EstimationConfig tunes effort estimates.
type EstimationConfig struct {
	BaseHoursPerArea float64 `mapstructure:"baseHoursPerArea" json:"baseHoursPerArea"`
}

// HTTPConfig applies to every upstream client.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Jira:   JiraConfig{AcceptanceCriteriaField: "customfield_10100"},
		GitHub: GitHubConfig{BaseURL: "https://api.github.com"},
		Cache: CacheConfig{
			Path: filepath.Join(cacheDir(), "inventory.db"),
			TTL:  6 * time.Hour,
		},
		Server:     ServerConfig{Addr: "127.0.0.1", Port: 8080},
		Log:        LogConfig{Level: "info", Format: "text"},
		Estimation: EstimationConfig{BaseHoursPerArea: 2.0},
		HTTP:       HTTPConfig{Timeout: 30 * time.Second},
	}
}

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "testscope")
	}
	return ".testscope"
}

// Load reads configuration from path, or from the default search locations
// when path is empty. A missing file yields the defaults; environment
// variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("testscope")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "testscope"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("jira.baseURL", d.Jira.BaseURL)
	v.SetDefault("jira.email", d.Jira.Email)
	v.SetDefault("jira.token", d.Jira.Token)
	v.SetDefault("jira.acceptanceCriteriaField", d.Jira.AcceptanceCriteriaField)
	v.SetDefault("github.baseURL", d.GitHub.BaseURL)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("testrail.baseURL", d.TestRail.BaseURL)
	v.SetDefault("testrail.user", d.TestRail.User)
	v.SetDefault("testrail.apiKey", d.TestRail.APIKey)
	v.SetDefault("testrail.projectID", d.TestRail.ProjectID)
	v.SetDefault("testrail.suiteID", d.TestRail.SuiteID)
	v.SetDefault("traceability.path", d.Traceability.Path)
	v.SetDefault("vocabulary.path", d.Vocabulary.Path)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("estimation.baseHoursPerArea", d.Estimation.BaseHoursPerArea)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

// Validate checks the configuration for values the tools cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &Error{Field: "server.port", Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port)}
	}
	if c.Estimation.BaseHoursPerArea < 0 {
		return &Error{Field: "estimation.baseHoursPerArea", Message: "must not be negative"}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return &Error{Field: "cache.ttl", Message: "must be positive when the cache is enabled"}
	}
	if c.HTTP.Timeout < 0 {
		return &Error{Field: "http.timeout", Message: "must not be negative"}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &Error{Field: "log.format", Message: fmt.Sprintf("must be text or json, got %q", c.Log.Format)}
	}
	return nil
}

// RemoteConfigured reports whether all three remote services have a base
// URL, which `analyze` and the API's analyze endpoint need.
func (c *Config) RemoteConfigured() bool {
	return c.Jira.BaseURL != "" && c.GitHub.BaseURL != "" && c.TestRail.BaseURL != ""
}

// Error is a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
