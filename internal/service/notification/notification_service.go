package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type NotificationUseCase interface {
	CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	HandleBookingConfirmed(ctx context.Context, event domain.BookingConfirmedEvent) error
	DeliverPending(ctx context.Context) (DeliveryReport, error)
}

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type TicketLocker interface {
	AcquireTicketLock(ctx context.Context, ticketID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseTicketLock(ctx context.Context, ticketID uuid.UUID) error
}

type CreateTicketInput struct {
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	RecipientEmail string `json:"recipientEmail"`
}

type DeliveryReport struct {
	Sent    int
	Failed  int
	Skipped int
}

type NotificationService struct {
	tickets   repository.TicketRepository
	mailer    Mailer
	locker    TicketLocker
	lockTTL   time.Duration
	batchSize int
	dedupe    bool
}

type Option func(*NotificationService)

// WithTicketLock guards each delivery attempt with a distributed lock so that
// several workers can share one tickets table.
func WithTicketLock(locker TicketLocker, ttl time.Duration) Option {
	return func(s *NotificationService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithBatchSize(size int) Option {
	return func(s *NotificationService) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithDedupeByBooking makes redelivered booking events a no-op instead of a second ticket.
func WithDedupeByBooking(enabled bool) Option {
	return func(s *NotificationService) {
		s.dedupe = enabled
	}
}

func NewNotificationService(tickets repository.TicketRepository, mailer Mailer, opts ...Option) *NotificationService {
	service := &NotificationService{
		tickets:   tickets,
		mailer:    mailer,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *NotificationService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Content) == "" || strings.TrimSpace(input.RecipientEmail) == "" {
		return nil, fmt.Errorf("%w: subject, content and recipientEmail are required", domain.ErrValidation)
	}

	ticket := domain.NewTicket(input.Subject, input.Content, input.RecipientEmail)
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	log.Info().Str("ticket_id", ticket.ID.String()).Msg("ticket created")
	return ticket, nil
}

func (s *NotificationService) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// HandleBookingConfirmed turns a booking event into a PENDING ticket. A failed insert
// is logged and dropped: the event is acknowledged either way.
func (s *NotificationService) HandleBookingConfirmed(ctx context.Context, event domain.BookingConfirmedEvent) error {
	ticket := ticketForBooking(event)
	logger := log.With().
		Str("booking_id", event.BookingID.String()).
		Str("ticket_id", ticket.ID.String()).
		Logger()

	if ticket.RecipientEmail == "" {
		logger.Warn().Msg("booking event has no recipient email, ticket will fail until corrected")
	}

	if s.dedupe {
		created, err := s.tickets.CreateForBooking(ctx, ticket)
		if err != nil {
			logger.Error().Err(err).Msg("ticket insert failed, notification dropped")
			return nil
		}
		if !created {
			logger.Info().Msg("ticket for booking already exists, duplicate event ignored")
			return nil
		}
		logger.Info().Msg("ticket created for booking")
		return nil
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		logger.Error().Err(err).Msg("ticket insert failed, notification dropped")
		return nil
	}
	logger.Info().Msg("ticket created for booking")
	return nil
}

// NewBookingConfirmedHandler adapts HandleBookingConfirmed to the broker consumer.
// Undecodable payloads are returned as errors so the consumer can dead-letter them.
func NewBookingConfirmedHandler(service NotificationUseCase) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		var event domain.BookingConfirmedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decode booking event: %w", err)
		}
		if event.BookingID == uuid.Nil {
			return errors.New("decode booking event: booking_id is missing")
		}
		return service.HandleBookingConfirmed(ctx, event)
	}
}

// DeliverPending makes one pass over every deliverable ticket, a page of batchSize at a
// time. Tickets are handled one at a time and a failure on one ticket never stops the pass.
func (s *NotificationService) DeliverPending(ctx context.Context) (DeliveryReport, error) {
	var report DeliveryReport
	var cursor repository.TicketCursor

	for {
		tickets, err := s.tickets.ListDeliverable(ctx, cursor, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("list deliverable tickets: %w", err)
		}

		for i := range tickets {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}

			switch s.deliver(ctx, &tickets[i]) {
			case outcomeSent:
				report.Sent++
			case outcomeFailed:
				report.Failed++
			case outcomeSkipped:
				report.Skipped++
			}
		}

		if len(tickets) < s.batchSize {
			return report, nil
		}
		cursor = repository.CursorAfter(tickets[len(tickets)-1])
	}
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (s *NotificationService) deliver(ctx context.Context, ticket *domain.Ticket) outcome {
	logger := log.With().Str("ticket_id", ticket.ID.String()).Int("attempts", ticket.Attempts).Logger()

	if s.locker != nil {
		acquired, err := s.locker.AcquireTicketLock(ctx, ticket.ID, s.lockTTL)
		if err != nil {
			logger.Warn().Err(err).Msg("ticket lock unavailable, skipping")
			return outcomeSkipped
		}
		if !acquired {
			logger.Debug().Msg("ticket is being delivered elsewhere, skipping")
			return outcomeSkipped
		}
		defer func() {
			if err := s.locker.ReleaseTicketLock(context.WithoutCancel(ctx), ticket.ID); err != nil {
				logger.Warn().Err(err).Msg("release ticket lock")
			}
		}()
	}

	sendErr := s.mailer.Send(ctx, email.Message{
		To:      ticket.RecipientEmail,
		Subject: ticket.Subject,
		Body:    ticket.Content,
	})
	if sendErr == nil {
		if err := s.tickets.MarkSent(ctx, ticket.ID); err != nil {
			logger.Error().Err(err).Msg("email sent but ticket not marked SENT")
			return outcomeFailed
		}
		logger.Info().Msg("ticket sent")
		return outcomeSent
	}

	class := email.Classify(sendErr)
	logger.Warn().Err(sendErr).Str("failure", string(class)).Msg("ticket delivery failed")
	if err := s.tickets.MarkFailed(ctx, ticket.ID, fmt.Sprintf("%s: %v", class, sendErr)); err != nil {
		logger.Error().Err(err).Msg("mark ticket FAILED")
	}
	return outcomeFailed
}

func ticketForBooking(event domain.BookingConfirmedEvent) *domain.Ticket {
	subject := fmt.Sprintf("Booking %s confirmed", event.BookingID)
	content := fmt.Sprintf(
		"Your booking %s for flight %d is confirmed.\nSeats: %d\nTotal cost: %s\nBooked at: %s",
		event.BookingID,
		event.FlightID,
		event.Seats,
		event.TotalCost.StringFixed(2),
		event.CreatedAt.UTC().Format(time.RFC3339),
	)

	ticket := domain.NewTicket(subject, content, event.UserEmail)
	bookingID := event.BookingID
	ticket.BookingID = &bookingID
	return ticket
}

var _ NotificationUseCase = (*NotificationService)(nil)
