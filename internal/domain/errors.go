package domain

import "errors"

// Domain errors
var (
	// Package errors
	ErrPackageNotFound     = errors.New("travel package not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrPassengerNotFound   = errors.New("passenger not found")

	// Roster errors
	ErrPassengerAlreadyRegistered = errors.New("passenger number already registered in package")

	// Validation errors
	ErrInvalidPackageID        = errors.New("invalid package id")
	ErrInvalidName             = errors.New("name is required")
	ErrInvalidCost             = errors.New("cost cannot be negative")
	ErrInvalidCapacity         = errors.New("capacity cannot be negative")
	ErrInvalidBalance          = errors.New("balance cannot be negative")
	ErrInvalidPassengerNumber  = errors.New("passenger number must be greater than zero")
	ErrInvalidTier             = errors.New("invalid passenger tier")
	ErrEnrolledExceedsCapacity = errors.New("enrolled passengers exceed capacity")
	ErrRosterExceedsCapacity   = errors.New("passengers exceed package capacity")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrDestinationNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrPassengerNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPackageID) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidCost) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidBalance) ||
		errors.Is(err, ErrInvalidPassengerNumber) ||
		errors.Is(err, ErrInvalidTier) ||
		errors.Is(err, ErrEnrolledExceedsCapacity) ||
		errors.Is(err, ErrRosterExceedsCapacity)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrPassengerAlreadyRegistered)
}
