package reconciler

// DefaultConcurrency bounds parallel user-resolution lookups so the target
// API is not overwhelmed.
const DefaultConcurrency = 4

// Option is a functional option for configuring a Reconciler
type Option func(*Reconciler)

// WithConcurrency sets the bound on parallel user-resolution lookups.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithDryRun computes and reports the diff and resolutions but skips the
// membership update.
func WithDryRun(enabled bool) Option {
	return func(r *Reconciler) {
		r.dryRun = enabled
	}
}
