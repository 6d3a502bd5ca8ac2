package transport

import "net/http"

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {
	// No authentication applied
}

// Bearer implements Bearer token authentication, as used by the source
// directory's Graph-style API.
type Bearer struct {
	Token string
}

// Apply implements the Authenticator interface for Bearer.
func (a *Bearer) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// Header implements static custom-header authentication, as used by the
// target directory's SCIM API token.
type Header struct {
	Name  string
	Value string
}

// Apply implements the Authenticator interface for Header.
func (a *Header) Apply(req *http.Request) {
	req.Header.Set(a.Name, a.Value)
}
