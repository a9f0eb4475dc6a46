package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.PricingUseCase
}

type quoteResponse struct {
	FlightID   int64  `json:"flightId"`
	UnitPrice  string `json:"unitPrice"`
	TotalSeats int    `json:"totalSeats"`
}

func NewFlightHandler(service flights.PricingUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/quote", h.quote)
}

// quote may be served from the pricing cache. Bookings are priced separately.
func (h *FlightHandler) quote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	pricing, err := h.service.GetQuote(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(pricing))
}

func toQuoteResponse(p *domain.FlightPricing) quoteResponse {
	return quoteResponse{
		FlightID:   p.FlightID,
		UnitPrice:  p.UnitPrice.StringFixed(2),
		TotalSeats: p.TotalSeats,
	}
}
