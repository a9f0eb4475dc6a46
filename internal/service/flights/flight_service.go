package flights

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/rs/zerolog/log"
)

type PricingUseCase interface {
	GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error)
	GetQuote(ctx context.Context, flightID int64) (*domain.FlightPricing, error)
}

// Catalog is the remote flight catalog.
type Catalog interface {
	GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error)
}

type PricingCache interface {
	GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error)
	SetPricing(ctx context.Context, pricing *domain.FlightPricing) error
}

// PricingService serves flight pricing from the catalog. Bookings always use the live
// value; the cache only backs quotes, which may be up to one cache TTL old.
type PricingService struct {
	catalog Catalog
	cache   PricingCache
}

func NewPricingService(catalog Catalog, cache PricingCache) *PricingService {
	return &PricingService{catalog: catalog, cache: cache}
}

// GetPricing asks the catalog and refreshes the cached quote with the answer.
func (s *PricingService) GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	pricing, err := s.catalog.GetPricing(ctx, flightID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, pricing)
	return pricing, nil
}

// GetQuote reads through the cache. Not for pricing a booking.
func (s *PricingService) GetQuote(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPricing(ctx, flightID)
		if err != nil {
			log.Warn().Err(err).Int64("flight_id", flightID).Msg("pricing cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.GetPricing(ctx, flightID)
}

func (s *PricingService) store(ctx context.Context, pricing *domain.FlightPricing) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetPricing(ctx, pricing); err != nil {
		log.Warn().Err(err).Int64("flight_id", pricing.FlightID).Msg("pricing cache write failed")
	}
}

var _ PricingUseCase = (*PricingService)(nil)
