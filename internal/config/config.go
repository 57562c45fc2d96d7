// Package config provides configuration management for testmo-overview,
// including loading configuration with precedence, environment variable
// overrides, credential persistence with owner-only file access, and
// get/set/list operations for configuration values.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/core"
)

const (
	// ConfigFileName is the name of the config file in both locations.
	ConfigFileName = "testmo-overview.json"
	// ConfigHomeDirName is the per-user config directory under $HOME.
	ConfigHomeDirName = ".testmo-overview"

	// APIPathSuffix is appended to the GUI URL to derive the API URL.
	APIPathSuffix = "/api/v1"

	DefaultOutputDir = "Files"
	DefaultFilter    = "not_retired_or_rejected"
	DefaultRuns      = 6
	DefaultTimeout   = 20
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

func ValidLogLevels() map[LogLevel]struct{} {
	return map[LogLevel]struct{}{
		LogLevelDebug: {},
		LogLevelInfo:  {},
		LogLevelWarn:  {},
		LogLevelError: {},
		LogLevelFatal: {},
	}
}

func IsValidLogLevel(level LogLevel) bool {
	validLogLevels := ValidLogLevels()
	_, ok := validLogLevels[level]
	return ok
}

type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

func ValidLogFormats() map[LogFormat]struct{} {
	return map[LogFormat]struct{}{
		LogFormatPretty: {},
		LogFormatJSON:   {},
	}
}

func IsValidLogFormat(format LogFormat) bool {
	_, ok := ValidLogFormats()[format]
	return ok
}

// Config represents the testmo-overview configuration: the Testmo instance
// and credentials, export and overview defaults, and logging options.
// Credentials live in the same file as the rest and make the file
// owner-read-only, see SaveCredentials.
type Config struct {
	GUIURL   string `json:"gui_url,omitempty" mapstructure:"gui_url" validate:"omitempty,url"` // base URL of the Testmo GUI
	APIURL   string `json:"api_url,omitempty" mapstructure:"api_url" validate:"omitempty,url"` // API base URL, derived from gui_url when empty
	User     string `json:"user,omitempty" mapstructure:"user"`                                // GUI login user (e-mail)
	Password string `json:"password,omitempty" mapstructure:"password"`                        // GUI login password
	Token    string `json:"token,omitempty" mapstructure:"token"`                              // API token

	OutputDir string `json:"output_dir,omitempty" mapstructure:"output_dir"` // directory for exports and workbooks
	Filter    string `json:"filter,omitempty" mapstructure:"filter"`         // default case filter selection
	Runs      int    `json:"runs" mapstructure:"runs"`                       // run window: N>0 last N, 0 active only, -1 all
	Timeout   int    `json:"timeout" mapstructure:"timeout"`                 // export download wait in seconds
	Headless  bool   `json:"headless" mapstructure:"headless"`               // run the export browser headless

	LogoFile string `json:"logo_file,omitempty" mapstructure:"logo_file"` // optional image for the sheet title row

	LogFormat     LogFormat `json:"log_format,omitempty" mapstructure:"log_format"`         // "pretty" or "json"
	LogLevel      string    `json:"log_level,omitempty" mapstructure:"log_level"`           // "debug", "info", "warn", "error", "fatal"
	SelectorsFile string    `json:"selectors_file,omitempty" mapstructure:"selectors_file"` // optional override for the GUI selector manifest
}

// DeriveAPIURL returns the API base URL for a GUI base URL.
func DeriveAPIURL(guiURL string) string {
	return strings.TrimRight(guiURL, "/") + APIPathSuffix
}

// MissingCredentials returns the credential fields that are still empty, in
// the order they should be prompted for.
func (cfg *Config) MissingCredentials() []string {
	var missing []string
	if cfg.User == "" {
		missing = append(missing, "user")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if cfg.Token == "" {
		missing = append(missing, "token")
	}
	return missing
}

// ConfigValue represents a configuration value with its source
type ConfigValue struct {
	Value  any
	Source string // "env", "project", "user", or "default"
}

// secretKeys are config keys whose values must never be printed or logged.
var secretKeys = map[string]struct{}{
	"password": {},
	"token":    {},
}

// IsSecretKey reports whether the value of key must not be displayed.
func IsSecretKey(key string) bool {
	_, ok := secretKeys[strings.ToLower(key)]
	return ok
}

// GetUserConfigPath returns the path to the user-specific config file
// (~/.testmo-overview/testmo-overview.json)
func GetUserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ConfigHomeDirName, ConfigFileName), nil
}

// GetProjectConfigPath returns the path to the project-specific config file
// (./testmo-overview.json) relative to the current working directory
func GetProjectConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return filepath.Join(cwd, ConfigFileName), nil
}

// FindConfigFile returns the config file that would be loaded: the project
// file when it exists, the user file otherwise. found is false when neither
// exists yet.
func FindConfigFile() (path string, found bool) {
	if projectPath, err := GetProjectConfigPath(); err == nil {
		if _, statErr := os.Stat(projectPath); statErr == nil {
			return projectPath, true
		}
	}
	if userPath, err := GetUserConfigPath(); err == nil {
		if _, statErr := os.Stat(userPath); statErr == nil {
			return userPath, true
		}
	}
	return "", false
}

// setupViper configures Viper with defaults, config file locations, and environment variables.
// If configPath is provided (non-empty), loads from that specific path instead of using precedence.
func setupViper(configPath string) error {
	viper.Reset()
	setViperDefaults()
	viper.SetEnvPrefix("TESTMO_OVERVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If specific path provided, load only that file
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	// Otherwise use precedence: user config first, then project config
	userPath, userErr := GetUserConfigPath()
	if userErr == nil {
		if _, userStatErr := os.Stat(userPath); userStatErr == nil {
			viper.SetConfigFile(userPath)
			if userReadErr := viper.ReadInConfig(); userReadErr != nil {
				zap.L().Debug("Failed to read user config file", zap.String("path", userPath), zap.Error(userReadErr))
			}
		}
	}

	projectPath, projectErr := GetProjectConfigPath()
	if projectErr == nil {
		if _, projectStatErr := os.Stat(projectPath); projectStatErr == nil {
			viper.SetConfigFile(projectPath)
			if projectReadErr := viper.MergeInConfig(); projectReadErr != nil {
				zap.L().Debug("Failed to merge project config file", zap.String("path", projectPath), zap.Error(projectReadErr))
			}
		}
	}

	return nil
}

// setViperDefaults sets default values in Viper. Credential keys default to
// empty strings so their environment variables get picked up.
func setViperDefaults() {
	viper.SetDefault("gui_url", "")
	viper.SetDefault("api_url", "")
	viper.SetDefault("user", "")
	viper.SetDefault("password", "")
	viper.SetDefault("token", "")

	viper.SetDefault("output_dir", DefaultOutputDir)
	viper.SetDefault("filter", DefaultFilter)
	viper.SetDefault("runs", DefaultRuns)
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("headless", true)
	viper.SetDefault("logo_file", "")

	viper.SetDefault("log_format", "pretty")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("selectors_file", "")
}

// LoadConfig loads configuration with precedence: project config > user config > defaults.
// Environment variables override config file values.
// If configPath is provided, loads from that specific path instead.
func LoadConfig(configPath string) (*Config, error) {
	if err := setupViper(configPath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	postProcessConfig(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// postProcessConfig fills fields that derive from others.
func postProcessConfig(cfg *Config) {
	if cfg.APIURL == "" && cfg.GUIURL != "" {
		cfg.APIURL = DeriveAPIURL(cfg.GUIURL)
		zap.L().Debug("api_url not set, derived from gui_url", zap.String("api_url", cfg.APIURL))
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Runs < -1 {
		return fmt.Errorf("runs must be -1 (all), 0 (active only) or a positive count, got %d", cfg.Runs)
	}
	if cfg.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", cfg.Timeout)
	}

	if cfg.LogFormat != "" && !IsValidLogFormat(cfg.LogFormat) {
		return fmt.Errorf("log_format must be one of: %s, got '%s'", core.JoinMapKeys(ValidLogFormats()), cfg.LogFormat)
	}
	if cfg.LogLevel != "" && !IsValidLogLevel(LogLevel(cfg.LogLevel)) {
		return fmt.Errorf("log_level must be one of: %s, got '%s'", core.JoinMapKeys(ValidLogLevels()), cfg.LogLevel)
	}

	return nil
}

// SaveCredentials writes the config to path and restricts the file to its
// owner: the file carries the GUI password and the API token.
func SaveCredentials(ctx context.Context, path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	// #nosec G301 -- the directory may be listed, the file itself is 0600
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := core.RestrictToOwner(ctx, path); err != nil {
		return fmt.Errorf("failed to restrict config file access: %w", err)
	}

	return nil
}

// getValueSource determines the source of a config value
func getValueSource(key string) string {
	// Check if environment variable is set
	envKey := "TESTMO_OVERVIEW_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if os.Getenv(envKey) != "" {
		return "env"
	}

	// Check project config
	projectPath, err := GetProjectConfigPath()
	if err == nil {
		if _, projectStatErr := os.Stat(projectPath); projectStatErr == nil {
			if viper.IsSet(key) {
				// Viper doesn't track sources, so check whether the project
				// config file itself carries the key
				projectViper := viper.New()
				projectViper.SetConfigFile(projectPath)
				if projectReadErr := projectViper.ReadInConfig(); projectReadErr == nil {
					if projectViper.IsSet(key) {
						return "project"
					}
				}
			}
		}
	}

	// Check user config
	userPath, userErr := GetUserConfigPath()
	if userErr == nil {
		if _, userStatErr := os.Stat(userPath); userStatErr == nil {
			userViper := viper.New()
			userViper.SetConfigFile(userPath)
			if userReadErr := userViper.ReadInConfig(); userReadErr == nil {
				if userViper.IsSet(key) {
					return "user"
				}
			}
		}
	}

	return "default"
}

// GetConfigValue retrieves a configuration value by key, checking environment variables first.
// Returns the value and its source ("env", "project", "user", or "default").
func GetConfigValue(key string) (*ConfigValue, error) {
	if err := setupViper(""); err != nil {
		return nil, err
	}

	// Viper handles defaults, so Get will return default if not set
	value := viper.Get(key)
	if value == nil {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	source := getValueSource(key)
	return &ConfigValue{Value: value, Source: source}, nil
}

// SetConfigValue sets a configuration value and saves it to the appropriate
// config file. Credential keys are refused, those are written by setup.
func SetConfigValue(ctx context.Context, key, value string) error {
	if IsSecretKey(key) {
		return fmt.Errorf("config key '%s' holds a credential, store it with 'testmo-overview setup'", key)
	}

	if err := setupViper(""); err != nil {
		return err
	}
	if viper.Get(key) == nil {
		return fmt.Errorf("unknown config key: %s", key)
	}

	// Determine which config file to update
	configPath, found := FindConfigFile()
	if !found {
		userPath, userErr := GetUserConfigPath()
		if userErr != nil {
			return fmt.Errorf("failed to get user config path: %w", userErr)
		}
		configPath = userPath
	}

	// Load existing config from that file only, then apply the new value
	if _, statErr := os.Stat(configPath); statErr == nil {
		if err := setupViper(configPath); err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
	}
	viper.Set(key, value)

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	postProcessConfig(cfg)

	// The file may hold credentials, so every write keeps it owner-only
	return SaveCredentials(ctx, configPath, cfg)
}

// ListConfig returns all configuration keys and values with their sources
func ListConfig() (map[string]*ConfigValue, error) {
	if err := setupViper(""); err != nil {
		return nil, err
	}

	result := make(map[string]*ConfigValue)

	allSettings := viper.AllSettings()
	for key := range allSettings {
		// Skip nested maps, the config is flat
		if _, ok := allSettings[key].(map[string]interface{}); ok {
			continue
		}
		configVal, err := GetConfigValue(key)
		if err != nil {
			continue
		}
		result[key] = configVal
	}

	return result, nil
}
