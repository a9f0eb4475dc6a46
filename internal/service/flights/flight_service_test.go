package flights

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightPricing), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightPricing), args.Error(1)
}

func (m *MockCache) SetPricing(ctx context.Context, pricing *domain.FlightPricing) error {
	args := m.Called(ctx, pricing)
	return args.Error(0)
}

func testPricing() *domain.FlightPricing {
	return &domain.FlightPricing{FlightID: 1, UnitPrice: decimal.NewFromInt(100), TotalSeats: 50}
}

func TestPricingService_GetQuote_CacheMiss(t *testing.T) {
	mockCatalog := &MockCatalog{}
	mockCache := &MockCache{}
	service := NewPricingService(mockCatalog, mockCache)
	ctx := context.Background()
	pricing := testPricing()

	mockCache.On("GetPricing", ctx, int64(1)).Return(nil, nil).Once()
	mockCatalog.On("GetPricing", ctx, int64(1)).Return(pricing, nil).Once()
	mockCache.On("SetPricing", ctx, pricing).Return(nil).Once()

	result, err := service.GetQuote(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, pricing, result)
	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPricingService_GetQuote_CacheHit(t *testing.T) {
	mockCatalog := &MockCatalog{}
	mockCache := &MockCache{}
	service := NewPricingService(mockCatalog, mockCache)
	ctx := context.Background()
	pricing := testPricing()

	mockCache.On("GetPricing", ctx, int64(1)).Return(pricing, nil).Once()

	result, err := service.GetQuote(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, pricing, result)
	mockCatalog.AssertNotCalled(t, "GetPricing", mock.Anything, mock.Anything)
}

func TestPricingService_GetQuote_CacheErrorFallsThrough(t *testing.T) {
	mockCatalog := &MockCatalog{}
	mockCache := &MockCache{}
	service := NewPricingService(mockCatalog, mockCache)
	ctx := context.Background()
	pricing := testPricing()

	mockCache.On("GetPricing", ctx, int64(1)).Return(nil, errors.New("redis down")).Once()
	mockCatalog.On("GetPricing", ctx, int64(1)).Return(pricing, nil).Once()
	mockCache.On("SetPricing", ctx, pricing).Return(errors.New("redis down")).Once()

	result, err := service.GetQuote(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, pricing, result)
}

func TestPricingService_GetPricing_IgnoresCachedEntry(t *testing.T) {
	mockCatalog := &MockCatalog{}
	mockCache := &MockCache{}
	service := NewPricingService(mockCatalog, mockCache)
	ctx := context.Background()

	stale := testPricing()
	live := &domain.FlightPricing{FlightID: 1, UnitPrice: decimal.NewFromInt(150), TotalSeats: 2}

	mockCache.On("GetPricing", ctx, int64(1)).Return(stale, nil).Maybe()
	mockCatalog.On("GetPricing", ctx, int64(1)).Return(live, nil).Once()
	mockCache.On("SetPricing", ctx, live).Return(nil).Once()

	result, err := service.GetPricing(ctx, 1)

	assert.NoError(t, err)
	assert.True(t, result.UnitPrice.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, result.TotalSeats)
	mockCache.AssertNotCalled(t, "GetPricing", mock.Anything, mock.Anything)
	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPricingService_GetPricing_CatalogError(t *testing.T) {
	mockCatalog := &MockCatalog{}
	mockCache := &MockCache{}
	service := NewPricingService(mockCatalog, mockCache)
	ctx := context.Background()

	mockCatalog.On("GetPricing", ctx, int64(1)).Return(nil, domain.ErrFlightLookup).Once()

	result, err := service.GetPricing(ctx, 1)

	assert.ErrorIs(t, err, domain.ErrFlightLookup)
	assert.Nil(t, result)
	mockCache.AssertNotCalled(t, "SetPricing", mock.Anything, mock.Anything)
}

func TestPricingService_GetPricing_NoCache(t *testing.T) {
	mockCatalog := &MockCatalog{}
	service := NewPricingService(mockCatalog, nil)
	ctx := context.Background()
	pricing := testPricing()

	mockCatalog.On("GetPricing", ctx, int64(1)).Return(pricing, nil).Once()

	result, err := service.GetPricing(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, pricing, result)
}
