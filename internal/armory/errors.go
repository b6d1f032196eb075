package armory

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUpstreamUnavailable is returned when the armory API cannot be reached
// or answers with a non-2xx status.
var ErrUpstreamUnavailable = errors.New("armory upstream unavailable")

// ValidationError reports an upstream payload that no longer matches the
// expected schema.
type ValidationError struct {
	Payload string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Payload, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
