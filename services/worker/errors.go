package worker

import (
	"errors"
	"fmt"

	"sewa/services/eligibility"
)

var (
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidDocumentKind = errors.New("unknown document kind")
	ErrDocumentNotFound    = errors.New("document not uploaded")
	ErrInvalidCategory     = errors.New("invalid service category")
	ErrPINFormat           = errors.New("PIN must be 4 to 6 digits")
	ErrInvalidPIN          = errors.New("incorrect PIN")
	ErrAppLockNotSet       = errors.New("app lock is not enabled")
	ErrAppLocked           = errors.New("app lock is temporarily locked")
)

// PermissionDeniedError carries the user-facing denial text for a refused action.
type PermissionDeniedError struct {
	Action  eligibility.Action
	Message string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Message)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}
