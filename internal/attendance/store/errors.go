// Package store holds the structured errors shared by the attendance stores.
package store

import (
	"errors"
	"fmt"
)

// Constraint names the uniqueness invariant a write violated.
type Constraint string

const (
	// ConstraintUserDate is one record per (user_id, attendance_date).
	ConstraintUserDate Constraint = "attendance_user_date_key"
	// ConstraintOrigin is one record per origin_address, ever.
	ConstraintOrigin Constraint = "attendance_origin_address_key"
)

// ConstraintError reports which uniqueness constraint rejected an insert.
type ConstraintError struct {
	Constraint Constraint
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("constraint %s violated", e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// ViolatedConstraint extracts the constraint from err, if it is a ConstraintError.
func ViolatedConstraint(err error) (Constraint, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint, true
	}
	return "", false
}
