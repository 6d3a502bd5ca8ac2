// Package scim implements the target directory adapter for SCIM-style APIs:
// offset/count pagination with an inter-page courtesy delay, client-side
// group name matching, filtered user lookup, and a PatchOp batch member add.
package scim

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/groupsync/groupsync/internal/paging"
	"github.com/groupsync/groupsync/internal/transport"
	"github.com/groupsync/groupsync/pkg/directory"
	"github.com/groupsync/groupsync/pkg/errors"
	"github.com/groupsync/groupsync/pkg/logging"
)

// DirectoryName identifies this adapter in logs and errors.
const DirectoryName = "scim"

const (
	contentType   = "application/scim+json;charset=utf-8"
	patchOpSchema = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
)

// Response structures for the SCIM API.
type listResponse[T any] struct {
	TotalResults int `json:"totalResults"`
	Resources    []T `json:"Resources"`
}

type groupResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type groupDetailResource struct {
	ID      string           `json:"id"`
	Members []memberResource `json:"members"`
}

type memberResource struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

type userResource struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

type patchPayload struct {
	Schemas    []string         `json:"schemas"`
	Operations []patchOperation `json:"Operations"`
}

type patchOperation struct {
	Op    string       `json:"op"`
	Path  string       `json:"path"`
	Value []patchValue `json:"value"`
}

type patchValue struct {
	Value string `json:"value"`
}

// Client implements directory.Target for a SCIM-style API.
type Client struct {
	transport    *transport.Client
	baseURL      string
	pageSize     int
	pageInterval time.Duration
	firstMatch   bool
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets the offset/count page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithPageInterval sets the delay between page requests. A non-positive
// interval disables the delay, mainly for tests.
func WithPageInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pageInterval = d
	}
}

// WithFirstMatch opts into picking the first result when a group name
// matches more than one group. The default treats ambiguity as fatal.
func WithFirstMatch(enabled bool) Option {
	return func(c *Client) {
		c.firstMatch = enabled
	}
}

// WithTransport replaces the transport client, mainly for tests.
func WithTransport(tc *transport.Client) Option {
	return func(c *Client) {
		c.transport = tc
	}
}

// New creates a SCIM adapter for the given API base URL (e.g.
// "https://tenant.example.com/api/v2/scim"), authenticating every request
// with the static token in the named header.
func New(baseURL, tokenHeader, token string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New(DirectoryName, &transport.Header{Name: tokenHeader, Value: token},
			transport.WithHeader("Accept", contentType),
			transport.WithHeader("Content-Type", contentType)),
		baseURL:      baseURL,
		pageSize:     paging.DefaultPageSize,
		pageInterval: paging.DefaultPageInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements directory.Source.
func (c *Client) Name() string {
	return DirectoryName
}

// listPager creates an offset/count pager over a SCIM list endpoint with
// the given extra query parameters.
func listPager[T any](c *Client, resource string, query url.Values) *paging.Index[T] {
	fetch := func(ctx context.Context, startIndex, count int) ([]T, int, error) {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("startIndex", fmt.Sprint(startIndex))
		q.Set("count", fmt.Sprint(count))
		endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, q.Encode())

		page := fmt.Sprintf("startIndex=%d", startIndex)
		resp, err := c.transport.Get(ctx, endpoint)
		if err != nil {
			return nil, 0, errors.WrapFetch(DirectoryName, resource, page, err)
		}
		var result listResponse[T]
		if err := transport.DecodeResponse(DirectoryName, resp, &result); err != nil {
			return nil, 0, errors.WrapFetch(DirectoryName, resource, page, err)
		}
		return result.Resources, result.TotalResults, nil
	}

	return paging.NewIndex(fetch,
		paging.WithPageSize[T](c.pageSize),
		paging.WithPageInterval[T](c.pageInterval))
}

// ResolveGroup pages through all groups and matches the display name
// exactly, case-sensitively, on the client; the API offers no server-side
// exact filter for groups. With first-match enabled the scan stops at the
// first hit, otherwise all pages are read so ambiguity can be detected.
func (c *Client) ResolveGroup(ctx context.Context, name string) (directory.Group, error) {
	logger := logging.FromContext(ctx)

	pager := listPager[groupResource](c, "Groups", nil)

	var matches []groupResource
	for {
		page, more, err := pager.Next(ctx)
		if err != nil {
			return directory.Group{}, err
		}
		for _, g := range page {
			if g.DisplayName != name {
				continue
			}
			matches = append(matches, g)
			if c.firstMatch {
				logger.Debug().
					Str("directory", DirectoryName).
					Str("group", name).
					Str("group_id", g.ID).
					Msg("Resolved group")
				return directory.Group{ID: g.ID, Name: g.DisplayName}, nil
			}
		}
		if !more {
			break
		}
	}

	switch {
	case len(matches) == 0:
		return directory.Group{}, errors.NewGroupNotFoundError(DirectoryName, name)
	case len(matches) > 1:
		return directory.Group{}, &errors.AmbiguousMatchError{
			Directory: DirectoryName,
			Resource:  "group",
			Name:      name,
			Count:     len(matches),
		}
	}

	g := matches[0]
	logger.Debug().
		Str("directory", DirectoryName).
		Str("group", name).
		Str("group_id", g.ID).
		Msg("Resolved group")

	return directory.Group{ID: g.ID, Name: g.DisplayName}, nil
}

// Members retrieves the group's member sub-resource. A group without a
// members field yields an empty set, not an error.
func (c *Client) Members(ctx context.Context, group directory.Group) (directory.MembershipSet, error) {
	endpoint := fmt.Sprintf("%s/Groups/%s?attributes=members", c.baseURL, group.ID)

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapFetch(DirectoryName, "members", "", err)
	}
	var detail groupDetailResource
	if err := transport.DecodeResponse(DirectoryName, resp, &detail); err != nil {
		return nil, err
	}

	set := make(directory.MembershipSet, 0, len(detail.Members))
	for _, m := range detail.Members {
		if m.Display == "" {
			continue
		}
		set = append(set, directory.Record{ID: m.Value, DisplayName: m.Display})
	}
	set = set.Dedupe()

	logging.FromContext(ctx).Info().
		Str("directory", DirectoryName).
		Str("group", group.Name).
		Int("members", len(set)).
		Msg("Fetched group members")

	return set, nil
}

// ResolveUser searches users filtered by exact userName. The first record
// whose userName matches the principal case-insensitively wins; exhausting
// every page without a match reports not found.
func (c *Client) ResolveUser(ctx context.Context, principal string) (directory.Record, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("userName eq %q", principal))

	pager := listPager[userResource](c, "Users", query)

	for {
		page, more, err := pager.Next(ctx)
		if err != nil {
			return directory.Record{}, err
		}
		for _, u := range page {
			if strings.EqualFold(u.UserName, principal) {
				return directory.Record{ID: u.ID, DisplayName: u.UserName, PrincipalName: u.UserName}, nil
			}
		}
		if !more {
			return directory.Record{}, &errors.UserNotFoundError{Directory: DirectoryName, Principal: principal}
		}
	}
}

// AddMembers issues one atomic PatchOp add naming all record IDs. The
// server treats members already present as no-ops. An empty id list sends
// nothing.
func (c *Client) AddMembers(ctx context.Context, group directory.Group, ids []string) error {
	logger := logging.FromContext(ctx)

	if len(ids) == 0 {
		logger.Debug().
			Str("directory", DirectoryName).
			Str("group", group.Name).
			Msg("No members to add; skipping patch")
		return nil
	}

	values := make([]patchValue, len(ids))
	for i, id := range ids {
		values[i] = patchValue{Value: id}
	}
	payload := patchPayload{
		Schemas: []string{patchOpSchema},
		Operations: []patchOperation{
			{Op: "add", Path: "members", Value: values},
		},
	}

	endpoint := fmt.Sprintf("%s/Groups/%s", c.baseURL, group.ID)
	resp, err := c.transport.Patch(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	if err := transport.DecodeResponse(DirectoryName, resp, nil); err != nil {
		return err
	}

	logger.Info().
		Str("directory", DirectoryName).
		Str("group", group.Name).
		Int("added", len(ids)).
		Msg("Sent membership update")

	return nil
}
