package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusPending TicketStatus = "PENDING"
	TicketStatusSent    TicketStatus = "SENT"
	TicketStatusFailed  TicketStatus = "FAILED"
)

// Ticket is an outbound email notification. FAILED is not terminal: the delivery
// scheduler keeps retrying PENDING and FAILED tickets until they are SENT.
type Ticket struct {
	ID             uuid.UUID
	BookingID      *uuid.UUID
	Subject        string
	Content        string
	RecipientEmail string
	Status         TicketStatus
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewTicket(subject, content, recipient string) *Ticket {
	return &Ticket{
		ID:             uuid.New(),
		Subject:        subject,
		Content:        content,
		RecipientEmail: recipient,
		Status:         TicketStatusPending,
	}
}
