package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlightsClient_GetPricing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/flights/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":1,"price":100,"totalSeats":50},"error":{}}`))
	}))
	defer srv.Close()

	client := NewFlightsClient(srv.URL+"/", time.Second)

	pricing, err := client.GetPricing(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), pricing.FlightID)
	assert.Equal(t, 50, pricing.TotalSeats)
	assert.True(t, decimal.NewFromInt(100).Equal(pricing.UnitPrice))
}

func TestFlightsClient_GetPricing_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			timeout: time.Second,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":`))
			},
			timeout: time.Second,
		},
		{
			name: "negative price",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":{"id":1,"price":-1,"totalSeats":5}}`))
			},
			timeout: time.Second,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout: 20 * time.Millisecond,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client := NewFlightsClient(srv.URL, tc.timeout)

			_, err := client.GetPricing(context.Background(), 1)

			assert.ErrorIs(t, err, domain.ErrFlightLookup)
		})
	}
}

func TestFlightsClient_GetPricing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFlightsClient(url, time.Second).GetPricing(context.Background(), 1)

	assert.ErrorIs(t, err, domain.ErrFlightLookup)
}

func TestUsersClient_GetEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":42,"email":"user@example.com"}}`))
	}))
	defer srv.Close()

	email, err := NewUsersClient(srv.URL, time.Second).GetEmail(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestUsersClient_GetEmail_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	email, err := NewUsersClient(srv.URL, time.Second).GetEmail(context.Background(), 42)

	assert.Error(t, err)
	assert.Empty(t, email)
}
