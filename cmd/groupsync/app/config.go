package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/groupsync/groupsync"
)

// Default token header for the target directory. Overridable through
// SCIM_TOKEN_HEADER for tenants that front the API differently.
const defaultTokenHeader = "Netskope-Api-Token"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Source directory (Graph-style)
	SourceBaseURL string
	SourceToken   string

	// Target directory (SCIM-style)
	TargetBaseURL      string
	TargetTokenHeader  string
	TargetToken        string
	TargetPageSize     int
	TargetPageInterval time.Duration

	// Group selection: either a mapping file or a single pair
	PairsFile   string
	SourceGroup string
	TargetGroup string

	// Run behavior
	DryRun      bool
	FirstMatch  bool
	Concurrency int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.groupsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	// Set up Viper for environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Bind directory credentials
	bindCredentials()

	viper.SetDefault("scim_token_header", defaultTokenHeader)

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".groupsync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		// Config file
		ConfigFile: viper.ConfigFileUsed(),

		// Source directory
		SourceBaseURL: viper.GetString("graph_base_url"),
		SourceToken:   viper.GetString("graph_token"),

		// Target directory
		TargetBaseURL:      viper.GetString("scim_base_url"),
		TargetTokenHeader:  viper.GetString("scim_token_header"),
		TargetToken:        viper.GetString("scim_token"),
		TargetPageSize:     viper.GetInt("scim_page_size"),
		TargetPageInterval: viper.GetDuration("scim_page_interval"),

		// Group selection
		PairsFile:   viper.GetString("pairs_file"),
		SourceGroup: viper.GetString("source_group"),
		TargetGroup: viper.GetString("target_group"),

		// Run behavior
		DryRun:      viper.GetBool("dry_run"),
		FirstMatch:  viper.GetBool("first_match"),
		Concurrency: viper.GetInt("concurrency"),

		// Logging configuration
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Pairs resolves the group pairs to reconcile: the mapping file when one
// is configured, otherwise the single source/target pair.
func (c *Config) Pairs() ([]groupsync.Pair, error) {
	if c.PairsFile != "" {
		return groupsync.LoadPairs(c.PairsFile)
	}
	if c.SourceGroup != "" && c.TargetGroup != "" {
		return []groupsync.Pair{{SourceGroup: c.SourceGroup, TargetGroup: c.TargetGroup}}, nil
	}
	return nil, fmt.Errorf("no group pairs configured: set --pairs or --source-group and --target-group")
}

// ClientConfig builds a groupsync.Config from the app configuration.
func (c *Config) ClientConfig() (groupsync.Config, error) {
	pairs, err := c.Pairs()
	if err != nil {
		return groupsync.Config{}, err
	}

	return groupsync.Config{
		Source: groupsync.SourceConfig{
			BaseURL: c.SourceBaseURL,
			Token:   c.SourceToken,
		},
		Target: groupsync.TargetConfig{
			BaseURL:      c.TargetBaseURL,
			TokenHeader:  c.TargetTokenHeader,
			Token:        c.TargetToken,
			PageSize:     c.TargetPageSize,
			PageInterval: c.TargetPageInterval,
		},
		Pairs: pairs,
	}, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindCredentials explicitly binds directory credential environment
// variables to Viper.
func bindCredentials() {
	credentials := []string{
		"GRAPH_BASE_URL",
		"GRAPH_TOKEN",
		"SCIM_BASE_URL",
		"SCIM_TOKEN_HEADER",
		"SCIM_TOKEN",
	}

	for _, key := range credentials {
		if err := viper.BindEnv(key); err != nil {
			// Log warning but continue - this isn't critical
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
