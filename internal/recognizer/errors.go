package recognizer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matsen/entryscrape/internal/network"
)

// Common errors returned by the recognizer client.
var (
	// ErrNotRecognized indicates the service found no metadata for the document.
	ErrNotRecognized = errors.New("document not recognized")

	// ErrRateLimited indicates the service is throttling requests.
	ErrRateLimited = errors.New("recognizer rate limit exceeded")

	// ErrNetworkError indicates the service could not be reached.
	ErrNetworkError = errors.New("network error communicating with recognizer")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from recognizer")
)

// APIError represents an error status from the recognition service.
type APIError struct {
	StatusCode int
	Message    string
	FileName   string // document that was being recognized
}

func (e *APIError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("recognizer error (status %d): %s (file: %s)", e.StatusCode, e.Message, e.FileName)
	}
	return fmt.Sprintf("recognizer error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotRecognized returns true if the service had no metadata for the document.
func IsNotRecognized(err error) bool {
	if errors.Is(err, ErrNotRecognized) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// fromNetwork maps a collaborator error onto the recognizer's errors.
func fromNetwork(err error, fileName string) error {
	var se *network.StatusError
	if errors.As(err, &se) {
		return &APIError{
			StatusCode: se.StatusCode,
			Message:    http.StatusText(se.StatusCode),
			FileName:   fileName,
		}
	}
	return fmt.Errorf("%w: %w", ErrNetworkError, err)
}
