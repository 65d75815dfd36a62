package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrImageNotFound signals a missing image record.
	ErrImageNotFound = errors.New("image not found")
	// ErrSpecimenNotFound signals a missing reference specimen.
	ErrSpecimenNotFound = errors.New("specimen not found")
	// ErrInvalidArgument signals a request validation failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBlobResolution signals that the object store could not produce a
	// fetchable URL for an uploaded blob. Submission aborts on this error.
	ErrBlobResolution = errors.New("blob resolution failed")
	// ErrVisionProviderError signals a vision-extraction service failure
	// (network, non-2xx, or empty content).
	ErrVisionProviderError = errors.New("vision provider error")
	// ErrMalformedServiceOutput signals vision output that is not a JSON object.
	ErrMalformedServiceOutput = errors.New("malformed service output")

	// ErrRevisionConflict signals an optimistic locking conflict on the
	// analysis write.
	ErrRevisionConflict = errors.New("revision conflict")
)

// RevisionConflictError wraps ErrRevisionConflict with the current record revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }

// NewRevisionConflict creates a revision conflict error.
func NewRevisionConflict(currentRevision int) error {
	return &RevisionConflictError{CurrentRevision: currentRevision}
}
