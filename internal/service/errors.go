package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSelfAdminChange = errors.New("cannot modify your own admin status")
	ErrStorageDisabled = errors.New("photo storage is not configured")
	ErrInvalidToken    = errors.New("invalid token")
)

// ExtractionError reports a model call that failed or returned no usable JSON.
type ExtractionError struct {
	Op  string
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// MealWriteState is the lifecycle of one meal write.
type MealWriteState string

const (
	MealWritePending    MealWriteState = "pending"
	MealWriteCreated    MealWriteState = "created"
	MealWriteCommitted  MealWriteState = "committed"
	MealWriteRolledBack MealWriteState = "rolled_back"
)

// MealWriteError is returned when a meal could not be committed.
type MealWriteError struct {
	State MealWriteState
	Err   error
}

func (e *MealWriteError) Error() string {
	return fmt.Sprintf("meal write %s: %v", e.State, e.Err)
}

func (e *MealWriteError) Unwrap() error {
	return e.Err
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
