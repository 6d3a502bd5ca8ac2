// Package groupsync reconciles group membership one way between two
// identity directories: a Graph-style source and a SCIM-style target. It
// wires the directory adapters to the reconciler and runs one
// reconciliation per configured group pair.
package groupsync

import (
	"context"
	"time"

	"github.com/groupsync/groupsync/internal/directories/graph"
	"github.com/groupsync/groupsync/internal/directories/scim"
	"github.com/groupsync/groupsync/pkg/directory"
	"github.com/groupsync/groupsync/pkg/errors"
	"github.com/groupsync/groupsync/pkg/logging"
	"github.com/groupsync/groupsync/pkg/reconciler"
)

// SourceConfig configures the source (Graph-style) directory. The bearer
// token comes from the external credential collaborator; this package only
// attaches it.
type SourceConfig struct {
	BaseURL string
	Token   string
}

// TargetConfig configures the target (SCIM-style) directory.
type TargetConfig struct {
	BaseURL      string
	TokenHeader  string
	Token        string
	PageSize     int
	PageInterval time.Duration
}

// Pair names one source group and the target group to reconcile it into.
type Pair struct {
	SourceGroup string `yaml:"source_group"`
	TargetGroup string `yaml:"target_group"`
}

// Config is the full configuration for a Client.
type Config struct {
	Source SourceConfig
	Target TargetConfig
	Pairs  []Pair
}

// validate checks that every required value is present.
func (c *Config) validate() error {
	switch {
	case c.Source.BaseURL == "":
		return &errors.ConfigError{Component: "source", Message: "base URL is required"}
	case c.Source.Token == "":
		return &errors.ConfigError{Component: "source", Message: "bearer token is required"}
	case c.Target.BaseURL == "":
		return &errors.ConfigError{Component: "target", Message: "base URL is required"}
	case c.Target.TokenHeader == "":
		return &errors.ConfigError{Component: "target", Message: "token header name is required"}
	case c.Target.Token == "":
		return &errors.ConfigError{Component: "target", Message: "API token is required"}
	case len(c.Pairs) == 0:
		return &errors.ConfigError{Component: "pairs", Message: "at least one group pair is required"}
	}
	for _, p := range c.Pairs {
		if p.SourceGroup == "" || p.TargetGroup == "" {
			return &errors.ConfigError{Component: "pairs", Message: "group pair with empty source or target name"}
		}
	}
	return nil
}

// Client runs reconciliations against a configured directory pair.
type Client struct {
	source directory.Source
	target directory.Target
	pairs  []Pair

	concurrency int
	dryRun      bool
	firstMatch  bool
}

// New creates a Client from configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		pairs:       cfg.Pairs,
		concurrency: reconciler.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.source == nil {
		c.source = graph.New(cfg.Source.BaseURL, cfg.Source.Token,
			graph.WithFirstMatch(c.firstMatch))
	}
	if c.target == nil {
		scimOpts := []scim.Option{scim.WithFirstMatch(c.firstMatch)}
		if cfg.Target.PageSize > 0 {
			scimOpts = append(scimOpts, scim.WithPageSize(cfg.Target.PageSize))
		}
		if cfg.Target.PageInterval != 0 {
			scimOpts = append(scimOpts, scim.WithPageInterval(cfg.Target.PageInterval))
		}
		c.target = scim.New(cfg.Target.BaseURL, cfg.Target.TokenHeader, cfg.Target.Token, scimOpts...)
	}

	return c, nil
}

// Sync reconciles every configured group pair in order. A failing pair does
// not stop later pairs; the joined error reports every failure. Results are
// returned for all pairs, failed ones included.
func (c *Client) Sync(ctx context.Context) ([]*reconciler.Result, error) {
	rec := reconciler.New(c.source, c.target,
		reconciler.WithConcurrency(c.concurrency),
		reconciler.WithDryRun(c.dryRun))

	results := make([]*reconciler.Result, 0, len(c.pairs))
	var errs []error
	for _, pair := range c.pairs {
		result, err := rec.Run(ctx, pair.SourceGroup, pair.TargetGroup)
		results = append(results, result)
		if err != nil {
			errs = append(errs, err)
			logging.FromContext(ctx).Error().
				Err(err).
				Str("source_group", pair.SourceGroup).
				Str("target_group", pair.TargetGroup).
				Msg("Reconciliation failed")
		}
	}

	return results, errors.Join(errs...)
}
