package repository

import (
	"context"
	"fmt"
)

var bookingsSchema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	flight_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	no_of_seats INTEGER NOT NULL CHECK (no_of_seats > 0),
	total_cost NUMERIC(12, 2) NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'INITIATED',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

var ticketsSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
	id UUID PRIMARY KEY,
	booking_id UUID NULL,
	subject TEXT NOT NULL,
	content TEXT NOT NULL,
	recipient_email VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS tickets_booking_id_idx ON tickets (booking_id)`,
	`CREATE INDEX IF NOT EXISTS tickets_status_created_at_idx ON tickets (status, created_at, id)`,
}

// InitBookingsSchema creates the tables owned by the booking service.
func InitBookingsSchema(ctx context.Context, db DB) error {
	return execAll(ctx, db, bookingsSchema)
}

// InitTicketsSchema creates the tables owned by the notification service.
func InitTicketsSchema(ctx context.Context, db DB) error {
	return execAll(ctx, db, ticketsSchema)
}

func execAll(ctx context.Context, db DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
