// Package directory defines the data model shared by directory adapters:
// records, groups, membership sets, and the interfaces the reconciler
// drives. Adapters for concrete directory APIs live under
// internal/directories.
package directory

import "context"

// Record is one directory entry for a user. ID is directory-assigned and
// opaque; it is stable within a run but never comparable across directories.
// DisplayName is the human-readable name used for cross-directory matching.
// PrincipalName (e.g. a UPN) is only needed when a record must be located in
// another directory, and may be empty for records that never need that.
type Record struct {
	ID            string
	DisplayName   string
	PrincipalName string
}

// Group is a resolved directory group. Resolved once per run per directory
// and treated as immutable for the run's duration.
type Group struct {
	ID   string
	Name string
}

// MembershipSet is an ordered sequence of records belonging to one group in
// one directory. It is deduplicated by ID within that directory's response,
// never across directories.
type MembershipSet []Record

// Dedupe returns a new set with duplicate IDs removed, keeping first
// occurrences in response order.
func (s MembershipSet) Dedupe() MembershipSet {
	if len(s) == 0 {
		return s
	}
	seen := make(map[string]struct{}, len(s))
	out := make(MembershipSet, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DisplayNames returns the display names of all records in order.
func (s MembershipSet) DisplayNames() []string {
	names := make([]string, len(s))
	for i, r := range s {
		names[i] = r.DisplayName
	}
	return names
}

// Source is the read side of a directory: the reconciler needs to resolve a
// group by name and list its members.
type Source interface {
	// Name identifies the directory in logs and errors.
	Name() string

	// ResolveGroup resolves a group by display name. A missing group is
	// reported as an error matching errors.ErrNotFound.
	ResolveGroup(ctx context.Context, name string) (Group, error)

	// Members lists the group's members. A group with no members yields an
	// empty set, not an error.
	Members(ctx context.Context, group Group) (MembershipSet, error)
}

// Target is a directory the reconciler can correct: everything a Source
// offers, plus user lookup by principal name and a batch membership add.
type Target interface {
	Source

	// ResolveUser locates a user record by exact principal name match. A
	// missing user is reported as an error matching errors.ErrNotFound.
	ResolveUser(ctx context.Context, principal string) (Record, error)

	// AddMembers adds the given record IDs to the group in one atomic batch
	// call. An empty id list is a no-op and must not issue a request. The
	// server is trusted to treat already-present members as no-ops.
	AddMembers(ctx context.Context, group Group, ids []string) error
}
