package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/shopspring/decimal"
)

// envelope is the response shape shared by the flight and auth services.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type flightDTO struct {
	ID         int64           `json:"id"`
	Price      decimal.Decimal `json:"price"`
	TotalSeats int             `json:"totalSeats"`
}

type FlightsClient struct {
	baseURL string
	http    *http.Client
}

func NewFlightsClient(baseURL string, timeout time.Duration) *FlightsClient {
	return &FlightsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetPricing fetches the current unit price and seat capacity of a flight.
// Every failure, including a timeout, wraps domain.ErrFlightLookup.
func (c *FlightsClient) GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	var resp envelope[flightDTO]
	if err := getJSON(ctx, c.http, fmt.Sprintf("%s/api/v1/flights/%d", c.baseURL, flightID), &resp); err != nil {
		return nil, fmt.Errorf("%w: flight %d: %v", domain.ErrFlightLookup, flightID, err)
	}
	if resp.Data.TotalSeats < 0 || resp.Data.Price.IsNegative() {
		return nil, fmt.Errorf("%w: flight %d: invalid pricing", domain.ErrFlightLookup, flightID)
	}

	return &domain.FlightPricing{
		FlightID:   flightID,
		UnitPrice:  resp.Data.Price,
		TotalSeats: resp.Data.TotalSeats,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %v", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
