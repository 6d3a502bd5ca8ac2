package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupsync/groupsync/pkg/directory"
	"github.com/groupsync/groupsync/pkg/errors"
)

func TestResolveGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups", r.URL.Path)
		assert.Equal(t, "displayName eq 'Crest Core QA'", r.URL.Query().Get("$filter"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"id": "g-123", "displayName": "Crest Core QA"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	group, err := c.ResolveGroup(context.Background(), "Crest Core QA")
	require.NoError(t, err)

	assert.Equal(t, "g-123", group.ID)
	assert.Equal(t, "Crest Core QA", group.Name)
}

func TestResolveGroupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"value": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.ResolveGroup(context.Background(), "Nope")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveGroupAmbiguous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"id": "g-1", "displayName": "Dup"},
				{"id": "g-2", "displayName": "Dup"},
			},
		})
	}))
	defer srv.Close()

	t.Run("strict by default", func(t *testing.T) {
		c := New(srv.URL, "tok")
		_, err := c.ResolveGroup(context.Background(), "Dup")
		require.Error(t, err)
		assert.True(t, errors.IsAmbiguous(err))
	})

	t.Run("first match opt-in", func(t *testing.T) {
		c := New(srv.URL, "tok", WithFirstMatch(true))
		group, err := c.ResolveGroup(context.Background(), "Dup")
		require.NoError(t, err)
		assert.Equal(t, "g-1", group.ID, "first result in response order wins")
	})
}

func TestResolveGroupAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-token")
	_, err := c.ResolveGroup(context.Background(), "Any")

	require.Error(t, err)
	assert.True(t, errors.IsAuthFailed(err))
}

func TestMembersPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/g-123/members", r.URL.Path)

		page := r.URL.Query().Get("page")
		switch page {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]string{
					{"@odata.type": "#microsoft.graph.user", "id": "u-1", "displayName": "Alice Smith", "userPrincipalName": "alice@example.com"},
					{"@odata.type": "#microsoft.graph.group", "id": "nested", "displayName": "Nested Group"},
				},
				"@odata.nextLink": srv.URL + "/groups/g-123/members?page=2",
			})
		case "2":
			json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]string{
					{"@odata.type": "#microsoft.graph.user", "id": "u-2", "displayName": "bob jones", "userPrincipalName": "bob@example.com"},
					{"@odata.type": "#microsoft.graph.user", "id": "u-3", "displayName": "", "userPrincipalName": "noname@example.com"},
				},
			})
		default:
			t.Fatalf("unexpected page %q", page)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	set, err := c.Members(context.Background(), group("g-123", "Crest Core QA"))
	require.NoError(t, err)

	require.Len(t, set, 2, "non-user objects and nameless users are skipped")
	assert.Equal(t, "Alice Smith", set[0].DisplayName)
	assert.Equal(t, "alice@example.com", set[0].PrincipalName)
	assert.Equal(t, "bob jones", set[1].DisplayName)
}

func TestMembersEmptyGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	set, err := c.Members(context.Background(), group("g-123", "Empty"))

	require.NoError(t, err, "a group with no members field is empty, not an error")
	assert.Empty(t, set)
}

func TestMembersPageFailureDiscardsPartialResults(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"@odata.type": "#microsoft.graph.user", "id": "u-1", "displayName": "Alice", "userPrincipalName": "alice@example.com"},
			},
			"@odata.nextLink": srv.URL + "/groups/g-1/members?page=2",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	set, err := c.Members(context.Background(), group("g-1", "G"))

	require.Error(t, err)
	assert.Nil(t, set)

	var fetchErr *errors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "members", fetchErr.Resource)
	assert.Contains(t, fetchErr.Page, "page=2")
}

func TestMembersDedupesByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"@odata.type": "#microsoft.graph.user", "id": "u-1", "displayName": "Alice", "userPrincipalName": "alice@example.com"},
				{"@odata.type": "#microsoft.graph.user", "id": "u-1", "displayName": "Alice", "userPrincipalName": "alice@example.com"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	set, err := c.Members(context.Background(), group("g-1", "G"))
	require.NoError(t, err)

	assert.Len(t, set, 1)
}

func group(id, name string) directory.Group {
	return directory.Group{ID: id, Name: name}
}
