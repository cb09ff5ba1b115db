// Package config loads codewatch settings from YAML files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spiffcs/codewatch/internal/constants"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets. Secrets are never read from or
// written to config files.
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvClientSecret = "CODEWATCH_CLIENT_SECRET"
	EnvPassword     = "CODEWATCH_PASSWORD"
)

// Config represents the application configuration
type Config struct {
	// APIURL is a GitHub Enterprise base URL. Empty means github.com.
	APIURL         string        `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	ClientID       string        `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	Scopes         []string      `yaml:"scopes,omitempty" json:"scopes,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty"`
	CommitLimit    int           `yaml:"commit_limit,omitempty" json:"commit_limit,omitempty"`
	DefaultFormat  string        `yaml:"default_format,omitempty" json:"default_format,omitempty"`
	LogFormat      string        `yaml:"log_format,omitempty" json:"log_format,omitempty"`
	SessionFile    string        `yaml:"session_file,omitempty" json:"session_file,omitempty"`

	Cache *CacheConfig `yaml:"cache,omitempty" json:"cache,omitempty"`
}

// CacheConfig sizes the in-memory caches.
type CacheConfig struct {
	Users *CacheLimits `yaml:"users,omitempty" json:"users,omitempty"`
	Repos *CacheLimits `yaml:"repos,omitempty" json:"repos,omitempty"`
}

// CacheLimits bounds one cache by entry count and age.
type CacheLimits struct {
	Capacity *int           `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	TTL      *time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".codewatch"
	}
	return filepath.Join(configDir, "codewatch")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".codewatch.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .codewatch.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the given global and local files. Missing
// files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	global, err := loadFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}

	local, err := loadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}

	cfg := mergeConfig(global, local)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig merges local config on top of global config.
func mergeConfig(global, local *Config) *Config {
	result := *global

	// Merge simple fields (local wins if set)
	if local.APIURL != "" {
		result.APIURL = local.APIURL
	}
	if local.ClientID != "" {
		result.ClientID = local.ClientID
	}
	if len(local.Scopes) > 0 {
		result.Scopes = local.Scopes
	}
	if local.RequestTimeout != 0 {
		result.RequestTimeout = local.RequestTimeout
	}
	if local.CommitLimit != 0 {
		result.CommitLimit = local.CommitLimit
	}
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if local.LogFormat != "" {
		result.LogFormat = local.LogFormat
	}
	if local.SessionFile != "" {
		result.SessionFile = local.SessionFile
	}

	result.Cache = mergeCache(global.Cache, local.Cache)
	return &result
}

func mergeCache(global, local *CacheConfig) *CacheConfig {
	if global == nil && local == nil {
		return nil
	}
	result := &CacheConfig{}
	if global != nil {
		result.Users = global.Users
		result.Repos = global.Repos
	}
	if local != nil {
		result.Users = mergeLimits(result.Users, local.Users)
		result.Repos = mergeLimits(result.Repos, local.Repos)
	}
	return result
}

func mergeLimits(global, local *CacheLimits) *CacheLimits {
	if local == nil {
		return global
	}
	result := &CacheLimits{}
	if global != nil {
		*result = *global
	}
	if local.Capacity != nil {
		result.Capacity = local.Capacity
	}
	if local.TTL != nil {
		result.TTL = local.TTL
	}
	return result
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DefaultFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid default_format %q (must be text or json)", c.DefaultFormat)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (must be text or json)", c.LogFormat)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.CommitLimit < 0 || c.CommitLimit > constants.MaxCommitLimit {
		return fmt.Errorf("commit_limit must be between 1 and %d", constants.MaxCommitLimit)
	}
	if c.Cache != nil {
		if err := c.Cache.Users.validate("users"); err != nil {
			return err
		}
		if err := c.Cache.Repos.validate("repos"); err != nil {
			return err
		}
	}
	return nil
}

func (l *CacheLimits) validate(name string) error {
	if l == nil {
		return nil
	}
	if l.Capacity != nil && *l.Capacity < 1 {
		return fmt.Errorf("cache.%s.capacity must be at least 1", name)
	}
	if l.TTL != nil && *l.TTL < 0 {
		return fmt.Errorf("cache.%s.ttl must not be negative", name)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return constants.RequestTimeout
}

// Commits returns how many commits to fetch with a repository.
func (c *Config) Commits() int {
	if c.CommitLimit > 0 {
		return c.CommitLimit
	}
	return constants.CommitLimit
}

// Format returns the default output format.
func (c *Config) Format() string {
	if c.DefaultFormat != "" {
		return c.DefaultFormat
	}
	return "text"
}

// SessionPath returns where the logged-in session is kept.
func (c *Config) SessionPath() string {
	if c.SessionFile != "" {
		return c.SessionFile
	}
	return filepath.Join(DefaultConfigDir(), "session.json")
}

// UserCacheLimits returns the user cache capacity and TTL.
func (c *Config) UserCacheLimits() (int, time.Duration) {
	var l *CacheLimits
	if c.Cache != nil {
		l = c.Cache.Users
	}
	return l.resolve(constants.UserHistoryCapacity, constants.UserCacheTTL)
}

// RepoCacheLimits returns the repo cache capacity and TTL.
func (c *Config) RepoCacheLimits() (int, time.Duration) {
	var l *CacheLimits
	if c.Cache != nil {
		l = c.Cache.Repos
	}
	return l.resolve(constants.RepoHistoryCapacity, constants.RepoCacheTTL)
}

func (l *CacheLimits) resolve(capacity int, ttl time.Duration) (int, time.Duration) {
	if l == nil {
		return capacity, ttl
	}
	if l.Capacity != nil {
		capacity = *l.Capacity
	}
	if l.TTL != nil {
		ttl = *l.TTL
	}
	return capacity, ttl
}

// GitHubToken returns the token used for lookups when nobody is logged in.
func (c *Config) GitHubToken() string {
	return os.Getenv(EnvGitHubToken)
}

// ClientSecret returns the OAuth app secret used for password exchange.
func (c *Config) ClientSecret() string {
	return os.Getenv(EnvClientSecret)
}

// Password returns the non-interactive login secret, if set.
func (c *Config) Password() string {
	return os.Getenv(EnvPassword)
}

// DefaultConfig returns a fully populated config with all default values.
func DefaultConfig() *Config {
	userCap, userTTL := constants.UserHistoryCapacity, constants.UserCacheTTL
	repoCap, repoTTL := constants.RepoHistoryCapacity, constants.RepoCacheTTL

	return &Config{
		RequestTimeout: constants.RequestTimeout,
		CommitLimit:    constants.CommitLimit,
		DefaultFormat:  "text",
		LogFormat:      "text",
		Cache: &CacheConfig{
			Users: &CacheLimits{Capacity: &userCap, TTL: &userTTL},
			Repos: &CacheLimits{Capacity: &repoCap, TTL: &repoTTL},
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# codewatch configuration file
# See: codewatch config defaults  (for all available options)

# Output format: text or json
default_format: text

# GitHub Enterprise API URL (optional)
# api_url: https://github.example.com/api/v3/

# OAuth app used to exchange a password for a token (optional).
# The secret is read from CODEWATCH_CLIENT_SECRET.
# client_id: Iv1.0123456789abcdef

# Commits fetched with each repository
# commit_limit: 30

# cache:
#   users:
#     capacity: 20
#     ttl: 10m
#   repos:
#     capacity: 20
#     ttl: 5m
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
