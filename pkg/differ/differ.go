// Package differ computes the one-directional membership difference between
// two directories' views of a group: the source records whose display names
// are absent from the target, compared case-insensitively.
package differ

import (
	"golang.org/x/text/cases"

	"github.com/groupsync/groupsync/pkg/directory"
)

// Result is the outcome of a membership diff. Every name in Missing has an
// entry in SourceOf; callers use the mapped record to recover the principal
// name needed for target-directory lookup. Missing preserves each record's
// original casing and carries no particular order; the reconciler sorts
// before reporting.
type Result struct {
	Missing  []string
	SourceOf map[string]directory.Record
}

// Empty reports whether the diff found nothing to add.
func (r *Result) Empty() bool {
	return len(r.Missing) == 0
}

// Diff returns the source records case-insensitively absent from the target
// set, keyed by display name. Display names are compared under Unicode case
// folding, which is ordinal and locale-independent, so matching does not
// drift with deployment locale. Inputs are not modified.
func Diff(source, target directory.MembershipSet) *Result {
	fold := cases.Fold()

	targetKeys := make(map[string]struct{}, len(target))
	for _, r := range target {
		targetKeys[fold.String(r.DisplayName)] = struct{}{}
	}

	result := &Result{
		SourceOf: make(map[string]directory.Record),
	}

	for _, r := range source {
		if _, ok := targetKeys[fold.String(r.DisplayName)]; ok {
			continue
		}
		if _, seen := result.SourceOf[r.DisplayName]; seen {
			continue
		}
		result.Missing = append(result.Missing, r.DisplayName)
		result.SourceOf[r.DisplayName] = r
	}

	return result
}
