package amadeus

import (
	"errors"
	"fmt"
)

// ErrRateLimited is wrapped into the error returned once 429 retries are
// exhausted.
var ErrRateLimited = errors.New("amadeus: rate limit retries exhausted")

// APIError is a non-success HTTP answer from the API.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

func newAPIError(path string, status int, body []byte) *APIError {
	const maxBody = 2048
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &APIError{Path: path, StatusCode: status, Body: string(body)}
}
