package reconciler

import (
	"fmt"
	"time"

	"github.com/groupsync/groupsync/pkg/directory"
)

// ResolutionOutcome records one missing member's target-directory lookup.
// RecordID is set when the lookup succeeded; Err otherwise.
type ResolutionOutcome struct {
	DisplayName string
	Principal   string
	RecordID    string
	Err         error
}

// Resolved reports whether the lookup produced a target identifier.
func (o ResolutionOutcome) Resolved() bool {
	return o.Err == nil && o.RecordID != ""
}

// Result is the summary of one reconciliation run: counts fetched per
// directory, the sorted missing-name list, per-user resolution outcomes,
// and the final apply outcome.
type Result struct {
	RunID string
	State State

	SourceGroup        directory.Group
	TargetGroup        directory.Group
	TargetGroupMissing bool

	SourceCount int
	TargetCount int

	// Missing holds display names present in the source group and absent
	// from the target group, sorted case-insensitively.
	Missing []string

	// Resolutions follow the order of Missing.
	Resolutions []ResolutionOutcome

	// Applied is how many member additions were sent. Zero either means
	// nothing was missing or nothing could be resolved; State and
	// Warnings tell the two apart.
	Applied int

	DryRun   bool
	Warnings []string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// newResult creates a result at the start of a run.
func newResult(runID string, dryRun bool) *Result {
	return &Result{
		RunID:     runID,
		State:     StateInit,
		DryRun:    dryRun,
		StartTime: time.Now(),
	}
}

// finish stamps the end time.
func (r *Result) finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// fail marks the run failed and wraps the error with the state it occurred
// in.
func (r *Result) fail(state State, err error) (*Result, error) {
	r.State = StateFailed
	return r, &RunError{State: state, Err: err}
}

// warnf appends a formatted warning to the result.
func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// resolvedIDs returns the target record IDs of all successfully resolved
// members, deduplicated, in resolution (sorted missing) order.
func (r *Result) resolvedIDs() []string {
	seen := make(map[string]struct{}, len(r.Resolutions))
	var ids []string
	for _, outcome := range r.Resolutions {
		if !outcome.Resolved() {
			continue
		}
		if _, ok := seen[outcome.RecordID]; ok {
			continue
		}
		seen[outcome.RecordID] = struct{}{}
		ids = append(ids, outcome.RecordID)
	}
	return ids
}

// IsSuccess reports whether the run reached Done.
func (r *Result) IsSuccess() bool {
	return r.State == StateDone || r.State == StateApplied
}

// Summary returns a human-readable description of the run outcome. A run
// that made no changes because nothing was missing reads differently from
// one that failed before reaching a stable comparison.
func (r *Result) Summary() string {
	switch {
	case r.State == StateFailed:
		return fmt.Sprintf("reconciliation failed (fetched %d source / %d target members, %d missing)",
			r.SourceCount, r.TargetCount, len(r.Missing))
	case len(r.Missing) == 0:
		return fmt.Sprintf("in sync: all %d source members present in target (%d target members)",
			r.SourceCount, r.TargetCount)
	case r.DryRun:
		return fmt.Sprintf("dry run: %d of %d missing members resolvable, nothing applied",
			len(r.resolvedIDs()), len(r.Missing))
	case r.Applied == 0:
		return fmt.Sprintf("no changes applied: %d missing members, none resolvable in target",
			len(r.Missing))
	default:
		return fmt.Sprintf("applied %d of %d missing members (%d source / %d target fetched, %d warnings)",
			r.Applied, len(r.Missing), r.SourceCount, r.TargetCount, len(r.Warnings))
	}
}
