package doc

import (
	"errors"
	"fmt"
)

// DuplicateIDError reports an attempt to register a document id twice.
type DuplicateIDError struct {
	ID ProblemID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("DUPLICATE_ID: document %d already registered", e.ID)
}

// UnknownIDError reports an operation referencing a document that was
// never registered.
type UnknownIDError struct {
	ID ProblemID
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("UNKNOWN_ID: document %d not registered", e.ID)
}

// IsDuplicateID reports whether err is a DuplicateIDError.
// Uses errors.As to handle wrapped errors.
func IsDuplicateID(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}

// IsUnknownID reports whether err is an UnknownIDError.
// Uses errors.As to handle wrapped errors.
func IsUnknownID(err error) bool {
	var ue *UnknownIDError
	return errors.As(err, &ue)
}
