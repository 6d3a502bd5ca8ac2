// Package graph implements the source directory adapter for Microsoft
// Graph style APIs: group lookup through a server-side displayName filter
// and member listing through @odata.nextLink cursor pagination.
package graph

import (
	"context"
	"fmt"
	"net/url"

	"github.com/groupsync/groupsync/internal/paging"
	"github.com/groupsync/groupsync/internal/transport"
	"github.com/groupsync/groupsync/pkg/directory"
	"github.com/groupsync/groupsync/pkg/errors"
	"github.com/groupsync/groupsync/pkg/logging"
)

// DirectoryName identifies this adapter in logs and errors.
const DirectoryName = "graph"

const userODataType = "#microsoft.graph.user"

// Response structures for the Graph API.
type groupsResponse struct {
	Value []groupResource `json:"value"`
}

type groupResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type membersResponse struct {
	Value    []memberResource `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

type memberResource struct {
	ODataType         string `json:"@odata.type"`
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Client implements directory.Source for a Graph-style API.
type Client struct {
	transport  *transport.Client
	baseURL    string
	firstMatch bool
}

// Option configures a Client.
type Option func(*Client)

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

// New creates a Graph adapter for the given API base URL (e.g.
// "https://graph.microsoft.com/v1.0"), authenticating with the bearer token.
// Token acquisition and refresh are the credential collaborator's problem;
// the adapter only attaches what it is given.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New(DirectoryName, &transport.Bearer{Token: token}),
		baseURL:   baseURL,
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

// ResolveGroup resolves a group by display name using a single server-side
// exact-match filtered query.
func (c *Client) ResolveGroup(ctx context.Context, name string) (directory.Group, error) {
	logger := logging.FromContext(ctx)

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("displayName eq '%s'", name))
	query.Set("$select", "id,displayName")
	endpoint := c.baseURL + "/groups?" + query.Encode()

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return directory.Group{}, errors.WrapFetch(DirectoryName, "groups", "", err)
	}

	var result groupsResponse
	if err := transport.DecodeResponse(DirectoryName, resp, &result); err != nil {
		return directory.Group{}, err
	}

	switch {
	case len(result.Value) == 0:
		return directory.Group{}, errors.NewGroupNotFoundError(DirectoryName, name)
	case len(result.Value) > 1:
		if !c.firstMatch {
			return directory.Group{}, &errors.AmbiguousMatchError{
				Directory: DirectoryName,
				Resource:  "group",
				Name:      name,
				Count:     len(result.Value),
			}
		}
		logger.Warn().
			Str("directory", DirectoryName).
			Str("group", name).
			Int("matches", len(result.Value)).
			Msg("Multiple groups matched; using first in response order")
	}

	g := result.Value[0]
	logger.Debug().
		Str("directory", DirectoryName).
		Str("group", name).
		Str("group_id", g.ID).
		Msg("Resolved group")

	return directory.Group{ID: g.ID, Name: g.DisplayName}, nil
}

// Members lists the group's user members, following @odata.nextLink pages
// back-to-back. Non-user member objects and users missing either name field
// are skipped. A group with no members yields an empty set.
func (c *Client) Members(ctx context.Context, group directory.Group) (directory.MembershipSet, error) {
	query := url.Values{}
	query.Set("$select", "displayName,userPrincipalName")
	start := fmt.Sprintf("%s/groups/%s/members?%s", c.baseURL, group.ID, query.Encode())

	pager := paging.NewCursor(start, func(ctx context.Context, pageURL string) ([]memberResource, string, error) {
		resp, err := c.transport.Get(ctx, pageURL)
		if err != nil {
			return nil, "", errors.WrapFetch(DirectoryName, "members", pageURL, err)
		}
		var page membersResponse
		if err := transport.DecodeResponse(DirectoryName, resp, &page); err != nil {
			return nil, "", errors.WrapFetch(DirectoryName, "members", pageURL, err)
		}
		return page.Value, page.NextLink, nil
	})

	raw, err := paging.Collect(ctx, pager)
	if err != nil {
		return nil, err
	}

	set := make(directory.MembershipSet, 0, len(raw))
	for _, m := range raw {
		if m.ODataType != userODataType || m.DisplayName == "" || m.UserPrincipalName == "" {
			continue
		}
		set = append(set, directory.Record{
			ID:            m.ID,
			DisplayName:   m.DisplayName,
			PrincipalName: m.UserPrincipalName,
		})
	}
	set = set.Dedupe()

	logging.FromContext(ctx).Info().
		Str("directory", DirectoryName).
		Str("group", group.Name).
		Int("members", len(set)).
		Msg("Fetched group members")

	return set, nil
}
