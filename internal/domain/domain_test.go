package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	testCases := []struct {
		raw      string
		expected BookingStatus
		wantErr  bool
	}{
		{raw: "booked", expected: BookingStatusBooked},
		{raw: "Cancelled", expected: BookingStatusCancelled},
		{raw: " PENDING ", expected: BookingStatusPending},
		{raw: "initiated", expected: BookingStatusInitiated},
		{raw: "shipped", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			status, err := ParseBookingStatus(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Contains(t, err.Error(), "allowed values: BOOKED,CANCELLED,INITIATED,PENDING")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}
}

func TestNewBooking(t *testing.T) {
	booking := NewBooking(7, 42, 3, decimal.RequireFromString("99.90"))

	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.Equal(t, BookingStatusInitiated, booking.Status)
	assert.True(t, booking.TotalCost.Equal(decimal.RequireFromString("299.70")))
}

func TestNewTicket(t *testing.T) {
	ticket := NewTicket("subject", "content", "")

	assert.Equal(t, TicketStatusPending, ticket.Status)
	assert.Equal(t, "", ticket.RecipientEmail)
	assert.Nil(t, ticket.BookingID)
	assert.Zero(t, ticket.Attempts)
}

func TestBookingConfirmedEvent_JSON(t *testing.T) {
	event := BookingConfirmedEvent{
		BookingID: uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"),
		UserID:    42,
		FlightID:  7,
		Seats:     3,
		TotalCost: decimal.NewFromInt(300),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"booking_id": "0f8fad5b-d9cb-469f-a165-70867728950e",
		"user_id": 42,
		"user_email": "",
		"flight_id": 7,
		"seats": 3,
		"total_cost": "300",
		"created_at": "2026-01-02T03:04:05Z"
	}`, string(payload))
}
