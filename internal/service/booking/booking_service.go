package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type PricingLookup interface {
	GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error)
}

type UserLookup interface {
	GetEmail(ctx context.Context, userID int64) (string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings     repository.BookingRepository
	pricing      PricingLookup
	users        UserLookup
	producer     Producer
	bookingTopic string
	now          func() time.Time
}

type CreateBookingInput struct {
	FlightID  int64 `json:"flightId"`
	UserID    int64 `json:"userId"`
	NoOfSeats int   `json:"noOfSeats"`
}

type BookingServiceOption func(*BookingService)

// WithUserLookup enables best-effort resolution of the requester's email for the confirmation event.
func WithUserLookup(users UserLookup) BookingServiceOption {
	return func(s *BookingService) {
		s.users = users
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	pricing PricingLookup,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		pricing:      pricing,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking prices the booking before opening the write transaction, stores it, and
// then publishes the confirmation. Nothing after the commit can fail the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	pricing, err := s.pricing.GetPricing(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if input.NoOfSeats > pricing.TotalSeats {
		return nil, fmt.Errorf("%w: only %d seats available", domain.ErrInsufficientSeats, pricing.TotalSeats)
	}

	booking := domain.NewBooking(input.FlightID, input.UserID, input.NoOfSeats, pricing.UnitPrice)
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	logger := log.With().Str("booking_id", booking.ID.String()).Logger()
	logger.Info().
		Int64("flight_id", booking.FlightID).
		Int("seats", booking.NoOfSeats).
		Str("total_cost", booking.TotalCost.String()).
		Msg("booking created")

	event := domain.BookingConfirmedEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		UserEmail: s.lookupEmail(ctx, booking.UserID),
		FlightID:  booking.FlightID,
		Seats:     booking.NoOfSeats,
		TotalCost: booking.TotalCost,
		CreatedAt: s.now().UTC(),
	}
	if err := s.publish(ctx, event); err != nil {
		logger.Error().Err(err).Msg("booking confirmation not published, notification degraded")
	}

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*domain.Booking, error) {
	status, err := domain.ParseBookingStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	log.Info().Str("booking_id", id.String()).Str("status", string(updated.Status)).Msg("booking status updated")
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.UpdateStatus(ctx, id, string(domain.BookingStatusCancelled))
}

func (s *BookingService) lookupEmail(ctx context.Context, userID int64) string {
	if s.users == nil {
		return ""
	}
	email, err := s.users.GetEmail(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("user email lookup failed, continuing without email")
		return ""
	}
	return email
}

func (s *BookingService) publish(ctx context.Context, event domain.BookingConfirmedEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	return s.producer.Publish(ctx, s.bookingTopic, event.BookingID.String(), event)
}

func (in CreateBookingInput) validate() error {
	if in.FlightID <= 0 {
		return fmt.Errorf("%w: flightId is required and must be a positive integer", domain.ErrValidation)
	}
	if in.UserID <= 0 {
		return fmt.Errorf("%w: userId is required and must be a positive integer", domain.ErrValidation)
	}
	if in.NoOfSeats <= 0 {
		return fmt.Errorf("%w: noOfSeats must be a positive integer", domain.ErrValidation)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
