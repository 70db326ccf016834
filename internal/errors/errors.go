// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
)

// ErrNotFound is returned when an ad record or follow-up id does not resolve,
// or when an ownership/status filter excludes it.
type ErrNotFound struct {
    Entity string
    ID     int
}

func (e *ErrNotFound) Error() string {
    return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// ErrPreconditionFailed is returned when a state transition is attempted
// from an invalid source status, or when verification digits mismatch.
type ErrPreconditionFailed struct {
    Reason string
}

func (e *ErrPreconditionFailed) Error() string {
    return fmt.Sprintf("precondition failed: %s", e.Reason)
}

// ErrValidation is returned on malformed input: bad mobile number,
// non-positive custom amount/days, wrong UPI digit pattern.
type ErrValidation struct {
    Field  string
    Reason string
}

func (e *ErrValidation) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Helper constructors
func NewNotFound(entity string, id int) error {
    return &ErrNotFound{Entity: entity, ID: id}
}

func NewPreconditionFailed(reason string) error {
    return &ErrPreconditionFailed{Reason: reason}
}

func NewValidation(field, reason string) error {
    return &ErrValidation{Field: field, Reason: reason}
}

func IsNotFound(err error) bool {
    var e *ErrNotFound
    return errors.As(err, &e)
}

func IsPreconditionFailed(err error) bool {
    var e *ErrPreconditionFailed
    return errors.As(err, &e)
}

func IsValidation(err error) bool {
    var e *ErrValidation
    return errors.As(err, &e)
}
