package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupsync/groupsync/pkg/errors"
)

func TestBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("graph", &Bearer{Token: "tok123"})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NoError(t, DecodeResponse("graph", resp, nil))

	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestHeaderAuthAndCustomHeaders(t *testing.T) {
	var gotToken, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Netskope-Api-Token")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("scim", &Header{Name: "Netskope-Api-Token", Value: "secret"},
		WithHeader("Accept", "application/scim+json;charset=utf-8"))
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NoError(t, DecodeResponse("scim", resp, nil))

	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "application/scim+json;charset=utf-8", gotAccept)
}

func TestPatchSetsJSONContentType(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("scim", &NoAuth{})
	resp, err := c.Patch(context.Background(), srv.URL, map[string]string{"op": "add"})
	require.NoError(t, err)
	require.NoError(t, DecodeResponse("scim", resp, nil))

	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"op":"add"}`, gotBody)
}

func TestDecodeResponseStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, errors.ErrRateLimited},
		{"server error", http.StatusServiceUnavailable, errors.ErrDirectoryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := New("scim", &NoAuth{})
			resp, err := c.Get(context.Background(), srv.URL)
			require.NoError(t, err)

			err = DecodeResponse("scim", resp, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
		})
	}
}

func TestDecodeResponseParsesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalResults": 42}`))
	}))
	defer srv.Close()

	c := New("scim", &NoAuth{})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	var out struct {
		TotalResults int `json:"totalResults"`
	}
	require.NoError(t, DecodeResponse("scim", resp, &out))
	assert.Equal(t, 42, out.TotalResults)
}
