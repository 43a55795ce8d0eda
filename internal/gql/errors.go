package gql

import (
	"strings"

	"github.com/pkg/errors"
)

// doNotScrapeMarker is the backend's message when a URL is flagged
// do-not-scrape. Matched by substring because it arrives inside a
// field-level error.
const doNotScrapeMarker = "Scraping is disabled"

var (
	// ErrNoCredentials surfaces when the ambient cloud session yields nothing.
	ErrNoCredentials = errors.New("Unable to get AWS credentials")
)

// FieldError is a GraphQL response-level error (the errors[] array).
// The transport succeeded; the operation did not.
type FieldError struct {
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// IsFieldError reports whether err carries a GraphQL errors[] entry.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// IsDoNotScrape reports whether err is the backend refusing a fetch because
// the URL is flagged do-not-scrape. Such errors are warnings, not retryable
// failures.
func IsDoNotScrape(err error) bool {
	return err != nil && strings.Contains(err.Error(), doNotScrapeMarker)
}
