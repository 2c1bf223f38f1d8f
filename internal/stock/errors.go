package stock

import (
	"errors"
	"fmt"
)

// ErrSubmissionCancelled is returned when a stock update was not admitted to
// the queue because the caller's context or the process shut down first.
// The update must be treated as never submitted.
var ErrSubmissionCancelled = errors.New("stock update submission cancelled")

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrSubmissionCancelled, cause)
}
