package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupsync/groupsync/pkg/directory"
)

func members(names ...string) directory.MembershipSet {
	set := make(directory.MembershipSet, len(names))
	for i, n := range names {
		set[i] = directory.Record{ID: n, DisplayName: n}
	}
	return set
}

func TestDiffCaseInsensitiveMatch(t *testing.T) {
	source := members("Alice Smith", "bob jones")
	target := members("ALICE SMITH")

	result := Diff(source, target)

	assert.Equal(t, []string{"bob jones"}, result.Missing,
		"case-insensitive match eliminates Alice; original casing preserved")
	require.Contains(t, result.SourceOf, "bob jones")
	assert.Equal(t, "bob jones", result.SourceOf["bob jones"].ID)
}

func TestDiffEqualSetsYieldEmpty(t *testing.T) {
	source := members("Alice", "Bob", "Carol")
	target := members("alice", "BOB", "cArOl")

	result := Diff(source, target)

	assert.True(t, result.Empty())
	assert.Empty(t, result.Missing)
}

func TestDiffEmptyTarget(t *testing.T) {
	source := members("Alice", "Bob")

	result := Diff(source, nil)

	assert.ElementsMatch(t, []string{"Alice", "Bob"}, result.Missing)
}

func TestDiffEmptySource(t *testing.T) {
	result := Diff(nil, members("Alice"))
	assert.True(t, result.Empty())
}

func TestDiffMissingSubsetOfSource(t *testing.T) {
	source := members("Alice", "Bob", "Carol", "Dave")
	target := members("bob", "DAVE", "Eve")

	result := Diff(source, target)

	assert.ElementsMatch(t, []string{"Alice", "Carol"}, result.Missing)
	for _, name := range result.Missing {
		_, ok := result.SourceOf[name]
		assert.True(t, ok, "every missing name must map back to a source record")
	}
}

func TestDiffPreservesSecondaryKey(t *testing.T) {
	source := directory.MembershipSet{
		{ID: "1", DisplayName: "Bob Jones", PrincipalName: "bob.jones@example.com"},
	}

	result := Diff(source, nil)

	require.Contains(t, result.SourceOf, "Bob Jones")
	assert.Equal(t, "bob.jones@example.com", result.SourceOf["Bob Jones"].PrincipalName)
}

func TestDiffDuplicateSourceNames(t *testing.T) {
	source := directory.MembershipSet{
		{ID: "1", DisplayName: "Alice"},
		{ID: "2", DisplayName: "Alice"},
	}

	result := Diff(source, nil)

	assert.Equal(t, []string{"Alice"}, result.Missing)
	assert.Equal(t, "1", result.SourceOf["Alice"].ID, "first source record wins")
}

func TestDiffUnicodeFolding(t *testing.T) {
	// Case folding must handle non-ASCII letters the same way everywhere.
	source := members("Müller", "Ångström")
	target := members("MÜLLER")

	result := Diff(source, target)

	assert.Equal(t, []string{"Ångström"}, result.Missing)
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	source := members("Alice", "Bob")
	target := members("alice")

	_ = Diff(source, target)

	assert.Equal(t, members("Alice", "Bob"), source)
	assert.Equal(t, members("alice"), target)
}
