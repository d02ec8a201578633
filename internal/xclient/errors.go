package xclient

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a profile that is no longer visible (deleted or suspended).
var ErrNotFound = errors.New("account not found")

// UpstreamError wraps a failed platform API call.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("x api %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("x api %s: status %d", e.Endpoint, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
