package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/groupsync/groupsync/pkg/errors"
)

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// responses become an APIError carrying the status code and response body,
// so 401/403/429 map onto the auth-failed and rate-limited sentinels.
func DecodeResponse(directory string, resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.APIError{
			Directory: directory,
			Endpoint:  resp.Request.URL.Path,
			Message:   "reading response body",
			Err:       err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Directory:  directory,
			StatusCode: resp.StatusCode,
			Endpoint:   resp.Request.URL.Path,
			Message:    string(body),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &errors.APIError{
			Directory: directory,
			Endpoint:  resp.Request.URL.Path,
			Message:   "decoding response body",
			Err:       err,
		}
	}

	return nil
}
