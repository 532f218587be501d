package engine

import (
	"errors"
	"fmt"
)

// UnknownActionError reports an operation or message whose action tag is
// not one of the known kinds. It is a per-message diagnostic, never fatal:
// the offending message is dropped and processing continues.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("UNKNOWN_ACTION: %q", e.Action)
}

// IsUnknownAction reports whether err is an UnknownActionError.
// Uses errors.As to handle wrapped errors.
func IsUnknownAction(err error) bool {
	var ue *UnknownActionError
	return errors.As(err, &ue)
}
