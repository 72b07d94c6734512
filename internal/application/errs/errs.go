package errs

import "fmt"

type PermissionsError struct {
	Err error
}

func (t PermissionsError) Error() string {
	return fmt.Sprintf("error in permissions: %v", t.Err)
}

func (t PermissionsError) Unwrap() error {
	return t.Err
}

type RetryableError struct {
	Err error
}

func (t RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", t.Err)
}

func (t RetryableError) Unwrap() error {
	return t.Err
}

type NotFoundError struct {
	Entity string
	ID     any
}

func (t NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", t.Entity, t.ID)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (t ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", t.Field, t.Reason)
}

type ConflictError struct {
	Entity string
	Err    error
}

func (t ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %v", t.Entity, t.Err)
}

func (t ConflictError) Unwrap() error {
	return t.Err
}
