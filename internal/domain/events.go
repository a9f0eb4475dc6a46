package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingConfirmedEvent is published once per committed booking. UserEmail is
// best-effort and may be empty.
type BookingConfirmedEvent struct {
	BookingID uuid.UUID       `json:"booking_id"`
	UserID    int64           `json:"user_id"`
	UserEmail string          `json:"user_email"`
	FlightID  int64           `json:"flight_id"`
	Seats     int             `json:"seats"`
	TotalCost decimal.Decimal `json:"total_cost"`
	CreatedAt time.Time       `json:"created_at"`
}
