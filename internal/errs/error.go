package errs

import (
	"errors"
)

// Validation errors: malformed input, rejected before any lookup.
var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidDays = errors.New("rental term must be 3, 5 or 7 days")
	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD or 'all'")
	ErrUserName    = errors.New("username is required")
)

// Not found.
var ErrNotFound = errors.New("rental not found")

// Conflicts. "No stock" is never distinguished from "unknown book".
var (
	ErrBookNotAvailable    = errors.New("book is out of stock or not available for rent")
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed yet")
	ErrNotBooked           = errors.New("rental is not in booked status")
	ErrNotRented           = errors.New("rental is not in rented status")
	ErrNotCancellable      = errors.New("rental cannot be cancelled after pickup")
	ErrDuplicateRental     = errors.New("rental already exists")
)

// Forbidden: the id is valid but belongs to someone else.
var ErrNotOwner = errors.New("no permission to act on another user's rental")
