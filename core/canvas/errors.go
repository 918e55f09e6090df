package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a failed Canvas request. Status is 0 when the request never
// got a response (timeout).
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("canvas API %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("canvas API error: %d %s (%s)", e.Status, e.Message, e.Endpoint)
}

// IsNotFound reports whether err is a 404 from Canvas.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Canvas reports failures as {"errors":[{"message":"..."}]} or
// {"message":"..."}; fall back to the status text otherwise.
func newAPIError(resp *http.Response, endpoint string) *APIError {
	msg := http.StatusText(resp.StatusCode)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(data, &body) == nil {
		var parts []string
		if body.Message != "" {
			parts = append(parts, body.Message)
		}
		for _, e := range body.Errors {
			if e.Message != "" {
				parts = append(parts, e.Message)
			}
		}
		if len(parts) > 0 {
			msg = strings.Join(parts, "; ")
		}
	}

	return &APIError{Status: resp.StatusCode, Endpoint: endpoint, Message: msg}
}
