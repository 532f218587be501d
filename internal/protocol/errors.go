package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes protocol violations.
type ErrorCode string

const (
	// CodeMalformed indicates a frame that is not valid JSON or has no
	// action tag.
	CodeMalformed ErrorCode = "MALFORMED_MESSAGE"

	// CodeMissingField indicates a known action missing a field the
	// deployment profile requires.
	CodeMissingField ErrorCode = "MISSING_FIELD"

	// CodeDuplicateBootstrap indicates a second assign_id. Fatal: the
	// session identity and document set are established exactly once.
	CodeDuplicateBootstrap ErrorCode = "DUPLICATE_BOOTSTRAP"

	// CodeOutOfOrder indicates a steady-state message before the
	// bootstrap handshake.
	CodeOutOfOrder ErrorCode = "OUT_OF_ORDER"
)

// ProtocolError is a malformed or out-of-order message. Fatal errors
// terminate the session (the only recovery is reconnecting); non-fatal
// ones drop the single offending message.
type ProtocolError struct {
	Code    ErrorCode
	Action  Action
	Message string
	Fatal   bool
}

func (e *ProtocolError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("PROTOCOL_ERROR/%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("PROTOCOL_ERROR/%s: %s", e.Code, e.Message)
}

// IsProtocolError reports whether err is a ProtocolError.
// Uses errors.As to handle wrapped errors.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsFatal reports whether err is a ProtocolError that terminates the
// session.
func IsFatal(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Fatal
	}
	return false
}
