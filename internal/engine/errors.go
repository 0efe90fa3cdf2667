package engine

import "errors"

var (
	// ErrInvalidBirthDate is returned when a child's birth date is missing
	// or in the future.
	ErrInvalidBirthDate = errors.New("invalid birth date")

	// ErrInvalidChild is returned when required child fields are missing.
	ErrInvalidChild = errors.New("invalid child")

	// ErrContentDowngrade is returned when the loaded catalogue is older
	// than one already recorded in the store.
	ErrContentDowngrade = errors.New("content downgrade")
)
