package errors

import (
	"fmt"
	"testing"
)

func TestGroupNotFoundError(t *testing.T) {
	err := NewGroupNotFoundError("scim", "Engineering")

	if !IsNotFound(err) {
		t.Error("GroupNotFoundError should match ErrNotFound")
	}

	expected := `group "Engineering" not found in scim directory`
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestUserNotFoundError(t *testing.T) {
	err := &UserNotFoundError{Directory: "scim", Principal: "alice@example.com"}

	if !IsNotFound(err) {
		t.Error("UserNotFoundError should match ErrNotFound")
	}
}

func TestAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		target     error
		want       bool
	}{
		{"unauthorized maps to auth failed", 401, ErrAuthFailed, true},
		{"forbidden maps to auth failed", 403, ErrAuthFailed, true},
		{"too many requests maps to rate limited", 429, ErrRateLimited, true},
		{"server error maps to unavailable", 503, ErrDirectoryUnavailable, true},
		{"not found does not map to auth failed", 404, ErrAuthFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError("graph", tt.statusCode, "/groups", "boom")
			if got := Is(err, tt.target); got != tt.want {
				t.Errorf("Is(%d, %v) = %v, want %v", tt.statusCode, tt.target, got, tt.want)
			}
		})
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	cause := New("connection reset")
	err := NewFetchError("scim", "Groups", "startIndex=101", cause)

	if !Is(err, cause) {
		t.Error("FetchError should unwrap to its cause")
	}

	var fetchErr *FetchError
	if !As(err, &fetchErr) {
		t.Fatal("expected errors.As to find FetchError")
	}
	if fetchErr.Page != "startIndex=101" {
		t.Errorf("Expected page context preserved, got %q", fetchErr.Page)
	}
}

func TestFetchErrorThroughWrapping(t *testing.T) {
	cause := NewAPIError("scim", 429, "/Users", "slow down")
	err := fmt.Errorf("run failed: %w", WrapFetch("scim", "Users", "startIndex=1", cause))

	if !IsRateLimited(err) {
		t.Error("rate limit should be detectable through wrapped fetch error")
	}
}

func TestResolutionErrorUnwrap(t *testing.T) {
	cause := &UserNotFoundError{Directory: "scim", Principal: "bob@example.com"}
	err := &ResolutionError{DisplayName: "bob jones", Principal: "bob@example.com", Err: cause}

	if !IsNotFound(err) {
		t.Error("ResolutionError should unwrap to not found")
	}
}

func TestAuthenticationError(t *testing.T) {
	err := &AuthenticationError{Directory: "graph", Method: "bearer", Message: "token expired"}

	if !IsAuthFailed(err) {
		t.Error("AuthenticationError should match ErrAuthFailed")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "group", Value: "x", Message: "multiple groups matched"}

	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

func TestWrapHelpersNilPassthrough(t *testing.T) {
	if WrapFetch("scim", "Groups", "", nil) != nil {
		t.Error("WrapFetch(nil) should return nil")
	}
	if WrapAPI("scim", 500, "/Groups", nil) != nil {
		t.Error("WrapAPI(nil) should return nil")
	}
}
