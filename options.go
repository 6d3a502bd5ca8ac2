package groupsync

import "github.com/groupsync/groupsync/pkg/directory"

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithDryRun computes and reports diffs without applying updates.
func WithDryRun(enabled bool) Option {
	return func(c *Client) {
		c.dryRun = enabled
	}
}

// WithConcurrency bounds parallel user-resolution lookups per run.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFirstMatch opts into picking the first result when a group name
// matches more than one group in either directory. The default treats
// ambiguous matches as fatal, since vendor response ordering is not
// guaranteed.
func WithFirstMatch(enabled bool) Option {
	return func(c *Client) {
		c.firstMatch = enabled
	}
}

// WithSourceDirectory replaces the source directory adapter, mainly for
// tests.
func WithSourceDirectory(s directory.Source) Option {
	return func(c *Client) {
		c.source = s
	}
}

// WithTargetDirectory replaces the target directory adapter, mainly for
// tests.
func WithTargetDirectory(t directory.Target) Option {
	return func(c *Client) {
		c.target = t
	}
}
