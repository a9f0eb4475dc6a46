package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusInitiated BookingStatus = "INITIATED"
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var bookingStatuses = []BookingStatus{
	BookingStatusBooked,
	BookingStatusCancelled,
	BookingStatusInitiated,
	BookingStatusPending,
}

// ParseBookingStatus accepts any letter case and returns the normalized status.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range bookingStatuses {
		if s == status {
			return s, nil
		}
	}

	allowed := make([]string, 0, len(bookingStatuses))
	for _, s := range bookingStatuses {
		allowed = append(allowed, string(s))
	}
	return "", fmt.Errorf("%w: %q, allowed values: %s", ErrInvalidStatus, raw, strings.Join(allowed, ","))
}

type Booking struct {
	ID        uuid.UUID
	FlightID  int64
	UserID    int64
	NoOfSeats int
	TotalCost decimal.Decimal
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking prices the booking once. TotalCost is never recomputed afterwards.
func NewBooking(flightID, userID int64, seats int, unitPrice decimal.Decimal) *Booking {
	return &Booking{
		ID:        uuid.New(),
		FlightID:  flightID,
		UserID:    userID,
		NoOfSeats: seats,
		TotalCost: unitPrice.Mul(decimal.NewFromInt(int64(seats))),
		Status:    BookingStatusInitiated,
	}
}

// FlightPricing is what the flight catalog tells us about a flight at booking time.
type FlightPricing struct {
	FlightID   int64           `json:"flight_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalSeats int             `json:"total_seats"`
}
