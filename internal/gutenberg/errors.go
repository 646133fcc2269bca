package gutenberg

import (
	"errors"
	"fmt"
	"strings"
)

// FetchError reports that no text location produced a book. It is terminal:
// retries were already spent inside the client.
type FetchError struct {
	ExternalID int
	Reasons    []string
}

func (e *FetchError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("book %d: could not fetch text", e.ExternalID)
	}
	return fmt.Sprintf("book %d: could not fetch text: %s", e.ExternalID, strings.Join(e.Reasons, "; "))
}

// Retryable always reports false.
func (e *FetchError) Retryable() bool { return false }

// IsFetchError reports whether err wraps a *FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
