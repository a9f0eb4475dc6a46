package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	CreateForBooking(ctx context.Context, ticket *domain.Ticket) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	ListDeliverable(ctx context.Context, after TicketCursor, limit int) ([]domain.Ticket, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type PGTicketRepository struct {
	db DB
}

func NewTicketRepository(db DB) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, booking_id, subject, content, recipient_email, status, attempts, last_error, created_at, updated_at`

func (r *PGTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.db.QueryRow(ctx, `INSERT INTO tickets (id, booking_id, subject, content, recipient_email, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		ticket.ID, nullableUUID(ticket.BookingID), ticket.Subject, ticket.Content, ticket.RecipientEmail, string(ticket.Status)).
		Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// CreateForBooking inserts the ticket unless one already exists for the same booking.
// It reports false when the insert was skipped as a duplicate.
func (r *PGTicketRepository) CreateForBooking(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	if ticket.BookingID == nil {
		return false, errors.New("ticket has no booking id")
	}

	err := r.db.QueryRow(ctx, `INSERT INTO tickets (id, booking_id, subject, content, recipient_email, status)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text
		WHERE NOT EXISTS (SELECT 1 FROM tickets WHERE booking_id = $2)
		RETURNING created_at, updated_at`,
		ticket.ID, *ticket.BookingID, ticket.Subject, ticket.Content, ticket.RecipientEmail, string(ticket.Status)).
		Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert ticket: %w", err)
	}
	return true, nil
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

// TicketCursor is the position of the last ticket of a page. The zero value starts at the beginning.
type TicketCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func CursorAfter(ticket domain.Ticket) TicketCursor {
	return TicketCursor{CreatedAt: ticket.CreatedAt, ID: ticket.ID}
}

// ListDeliverable returns one page of PENDING and FAILED tickets ordered by (created_at, id),
// starting after the given cursor.
func (r *PGTicketRepository) ListDeliverable(ctx context.Context, after TicketCursor, limit int) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets
		WHERE status IN ($1, $2) AND (created_at, id) > ($3, $4)
		ORDER BY created_at, id
		LIMIT $5`,
		string(domain.TicketStatusPending), string(domain.TicketStatusFailed), after.CreatedAt, after.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET status=$1, attempts=attempts+1, last_error='', updated_at=now()
		WHERE id=$2 AND status <> $1`, string(domain.TicketStatusSent), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// MarkFailed never downgrades a SENT ticket.
func (r *PGTicketRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET status=$1, attempts=attempts+1, last_error=$2, updated_at=now()
		WHERE id=$3 AND status <> $4`, string(domain.TicketStatusFailed), reason, id, string(domain.TicketStatusSent))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t         domain.Ticket
		bookingID uuid.NullUUID
		status    string
	)
	if err := row.Scan(&t.ID, &bookingID, &t.Subject, &t.Content, &t.RecipientEmail, &status, &t.Attempts, &t.LastError, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if bookingID.Valid {
		id := bookingID.UUID
		t.BookingID = &id
	}
	t.Status = domain.TicketStatus(status)
	return &t, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

var _ TicketRepository = (*PGTicketRepository)(nil)
