package mdps

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL is returned when a base URL option is invalid.
	ErrInvalidBaseURL = errors.New("mdps: invalid base URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("mdps: http client cannot be nil")
	// ErrAmbiguousDateFilter is returned when both a single date and a
	// date range were supplied for one query.
	ErrAmbiguousDateFilter = errors.New("mdps: processing date and date range are mutually exclusive")
)

// APIError represents an error payload or HTTP failure from data services.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Raw     []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Message != "":
		return fmt.Sprintf("mdps: %s (status=%d)", e.Message, e.Status)
	case e.Detail != "":
		return fmt.Sprintf("mdps: %s (status=%d)", e.Detail, e.Status)
	default:
		return fmt.Sprintf("mdps: api error status=%d", e.Status)
	}
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}

// CatalogQueryError reports a catalog response without a features key: a
// malformed or erroring backend document, as opposed to a valid empty
// result.
type CatalogQueryError struct {
	CollectionID string
	Body         json.RawMessage
}

func (e *CatalogQueryError) Error() string {
	return fmt.Sprintf("mdps: malformed catalog response for %s: %s", e.CollectionID, summarizeBody(e.Body))
}

func summarizeBody(body json.RawMessage) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
