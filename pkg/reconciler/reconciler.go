// Package reconciler drives a single one-way membership reconciliation run:
// resolve both groups, fetch both membership sets, diff display names,
// resolve missing members to target identifiers, and apply at most one batch
// membership update.
package reconciler

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/groupsync/groupsync/pkg/differ"
	"github.com/groupsync/groupsync/pkg/directory"
	"github.com/groupsync/groupsync/pkg/errors"
	"github.com/groupsync/groupsync/pkg/logging"
)

// State is a phase of the reconciliation run. A run walks the states in
// order and ends in Done, or in Failed from any non-terminal state.
type State string

// Reconciliation run states.
const (
	StateInit              State = "init"
	StateSourceResolved    State = "source_resolved"
	StateTargetResolved    State = "target_resolved"
	StateMembershipFetched State = "membership_fetched"
	StateDiffed            State = "diffed"
	StateResolved          State = "resolved"
	StateApplied           State = "applied"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// RunError is a fatal reconciliation error tagged with the state the run
// was in when it occurred.
type RunError struct {
	State State
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return "reconciliation failed in state " + string(e.State) + ": " + e.Err.Error()
}

// Unwrap implements errors.Unwrap
func (e *RunError) Unwrap() error {
	return e.Err
}

// Reconciler reconciles one source group into one target group. It holds no
// mutable state across runs; each Run builds everything fresh.
type Reconciler struct {
	source      directory.Source
	target      directory.Target
	concurrency int
	dryRun      bool
}

// New creates a Reconciler for the given directory pair.
func New(source directory.Source, target directory.Target, opts ...Option) *Reconciler {
	r := &Reconciler{
		source:      source,
		target:      target,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one reconciliation. The returned Result is non-nil even on
// failure and records how far the run got; the error, when non-nil, is a
// *RunError identifying the state the run failed in. Non-fatal conditions
// (unresolvable users, missing target group with nothing to apply) end up
// in the result's warnings instead.
func (r *Reconciler) Run(ctx context.Context, sourceGroup, targetGroup string) (*Result, error) {
	result := newResult(uuid.NewString(), r.dryRun)
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.FromContext(ctx)

	logger.Info().
		Str("source_group", sourceGroup).
		Str("target_group", targetGroup).
		Msg("Starting reconciliation run")

	defer result.finish()

	// Init -> SourceResolved. A missing source group is fatal.
	src, err := r.source.ResolveGroup(ctx, sourceGroup)
	if err != nil {
		return result.fail(StateInit, err)
	}
	result.SourceGroup = src
	result.State = StateSourceResolved

	// SourceResolved -> TargetResolved. A missing target group degrades
	// the run: membership is treated as empty and the apply step reports
	// the miss instead of patching. Groups are not created here.
	tgt, err := r.target.ResolveGroup(ctx, targetGroup)
	switch {
	case err == nil:
		result.TargetGroup = tgt
		result.State = StateTargetResolved
	case errors.IsNotFound(err):
		result.TargetGroupMissing = true
		result.State = StateTargetResolved
		result.warnf("target group %q not found; comparing against empty membership", targetGroup)
		logger.Warn().Str("group", targetGroup).Msg("Target group not found")
	default:
		return result.fail(StateSourceResolved, err)
	}

	// TargetResolved -> MembershipFetched. The two fetches have no data
	// dependency; pagination inside each one stays sequential.
	var sourceSet, targetSet directory.MembershipSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set, err := r.source.Members(gctx, src)
		if err != nil {
			return err
		}
		sourceSet = set
		return nil
	})
	if !result.TargetGroupMissing {
		g.Go(func() error {
			set, err := r.target.Members(gctx, tgt)
			if err != nil {
				return err
			}
			targetSet = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result.fail(StateTargetResolved, err)
	}
	result.SourceCount = len(sourceSet)
	result.TargetCount = len(targetSet)
	result.State = StateMembershipFetched

	// MembershipFetched -> Diffed. Reported missing names are sorted
	// case-insensitively so output is deterministic across runs.
	diff := differ.Diff(sourceSet, targetSet)
	result.Missing = sortedNames(diff.Missing)
	result.State = StateDiffed

	if diff.Empty() {
		logger.Info().Msg("Memberships already reconciled; nothing to do")
		result.State = StateDone
		return result, nil
	}

	// Diffed -> Resolved. Lookups are independent and run with bounded
	// concurrency; failures are per-user warnings, never fatal. Outcomes
	// land in sorted-missing order regardless of completion order.
	result.Resolutions = r.resolveUsers(ctx, result.Missing, diff.SourceOf)
	result.State = StateResolved
	for _, outcome := range result.Resolutions {
		if outcome.Err != nil {
			result.warnf("cannot add %q (%s): %v", outcome.DisplayName, outcome.Principal, outcome.Err)
		}
	}

	// Resolved -> Applied. The batch patch is attempted at most once; a
	// missing target group surfaces here as a fatal apply error rather
	// than a silent success.
	ids := result.resolvedIDs()
	if result.TargetGroupMissing {
		return result.fail(StateResolved, &errors.ApplyError{
			Directory: r.target.Name(),
			Count:     len(ids),
			Err:       errors.NewGroupNotFoundError(r.target.Name(), targetGroup),
		})
	}

	if len(ids) == 0 {
		logger.Warn().Msg("No missing members could be resolved; nothing applied")
		result.State = StateDone
		return result, nil
	}

	if r.dryRun {
		logger.Info().Int("would_add", len(ids)).Msg("Dry run; skipping membership update")
		result.State = StateDone
		return result, nil
	}

	if err := r.target.AddMembers(ctx, tgt, ids); err != nil {
		return result.fail(StateResolved, &errors.ApplyError{
			Directory: r.target.Name(),
			GroupID:   tgt.ID,
			Count:     len(ids),
			Err:       err,
		})
	}
	result.Applied = len(ids)
	result.State = StateApplied

	logger.Info().
		Int("applied", result.Applied).
		Int("missing", len(result.Missing)).
		Msg("Reconciliation complete")

	result.State = StateDone
	return result, nil
}

// resolveUsers looks up each missing member in the target directory by
// principal name, with bounded concurrency. The returned outcomes follow
// the order of names.
func (r *Reconciler) resolveUsers(ctx context.Context, names []string, sourceOf map[string]directory.Record) []ResolutionOutcome {
	outcomes := make([]ResolutionOutcome, len(names))

	g := &errgroup.Group{}
	g.SetLimit(r.concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			record := sourceOf[name]
			outcome := ResolutionOutcome{
				DisplayName: name,
				Principal:   record.PrincipalName,
			}
			resolved, err := r.target.ResolveUser(ctx, record.PrincipalName)
			if err != nil {
				outcome.Err = &errors.ResolutionError{
					DisplayName: name,
					Principal:   record.PrincipalName,
					Err:         err,
				}
			} else {
				outcome.RecordID = resolved.ID
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait() // lookup failures are recorded per outcome, never returned

	return outcomes
}

// sortedNames returns the names sorted case-insensitively, with the
// original byte order breaking ties so equal folds stay deterministic.
func sortedNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := strings.ToLower(sorted[i]), strings.ToLower(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
