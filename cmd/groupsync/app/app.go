// Package app provides the application context and dependency management
// for the groupsync CLI. It centralizes configuration, logging, and the
// groupsync client instance behind a single App type.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/groupsync/groupsync"
)

// App represents the groupsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Groupsync client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client *groupsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Client returns the groupsync client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (*groupsync.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	cfg, err := a.config.ClientConfig()
	if err != nil {
		return nil, err
	}

	c, err := groupsync.New(cfg, a.buildClientOptions()...)
	if err != nil {
		return nil, err
	}

	a.client = c
	return c, nil
}

// buildClientOptions constructs groupsync options from the app configuration.
func (a *App) buildClientOptions() []groupsync.Option {
	var opts []groupsync.Option

	if a.config.DryRun {
		opts = append(opts, groupsync.WithDryRun(true))
	}
	if a.config.FirstMatch {
		opts = append(opts, groupsync.WithFirstMatch(true))
	}
	if a.config.Concurrency > 0 {
		opts = append(opts, groupsync.WithConcurrency(a.config.Concurrency))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom groupsync client (useful for testing).
func WithClient(c *groupsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
