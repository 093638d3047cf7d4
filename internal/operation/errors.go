package operation

import (
	"errors"
	"fmt"

	"github.com/Rorical/Ausmalbar/internal/models"
)

var (
	// ErrBusy is returned when an intent is activated while another
	// operation still holds the indicator.
	ErrBusy = errors.New("another operation is in progress")

	// ErrAborted matches failures of kind UserAborted.
	ErrAborted = errors.New("operation aborted by user")

	ErrNoPage = errors.New("no page loaded")
)

// Error is a terminal operation failure. Message is exactly what the user
// was shown.
type Error struct {
	Kind    models.FailureKind
	Intent  models.Intent
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed (%s): %s: %v", e.Intent, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed (%s): %s", e.Intent, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrAborted && e.Kind == models.UserAborted
}
