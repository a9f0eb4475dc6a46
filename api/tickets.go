package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/notification"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TicketService interface {
	CreateTicket(ctx context.Context, input notification.CreateTicketInput) (*domain.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
}

type TicketHandler struct {
	service TicketService
}

type ticketResponse struct {
	ID             string  `json:"id"`
	BookingID      *string `json:"bookingId,omitempty"`
	Subject        string  `json:"subject"`
	Content        string  `json:"content"`
	RecipientEmail string  `json:"recipientEmail"`
	Status         string  `json:"status"`
	Attempts       int     `json:"attempts"`
	LastError      string  `json:"lastError,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func NewTicketHandler(service TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *TicketHandler) create(c *gin.Context) {
	var req notification.CreateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.CreateTicket(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTicketResponse(ticket))
}

func (h *TicketHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	ticket, err := h.service.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	response := ticketResponse{
		ID:             t.ID.String(),
		Subject:        t.Subject,
		Content:        t.Content,
		RecipientEmail: t.RecipientEmail,
		Status:         string(t.Status),
		Attempts:       t.Attempts,
		LastError:      t.LastError,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
	if t.BookingID != nil {
		bookingID := t.BookingID.String()
		response.BookingID = &bookingID
	}
	return response
}
