package domain

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrBookingCancelled  = errors.New("booking is already cancelled")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrFlightLookup      = errors.New("flight lookup failed")
)
