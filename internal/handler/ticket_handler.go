package handler

import (
	"errors"
	"net/http"
	"strconv"
	"ticket-inventory/internal/model"
	"ticket-inventory/internal/service"
	apperrors "ticket-inventory/pkg/app_errors"
	"ticket-inventory/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.InventoryService
}

func NewTicketHandler(service service.InventoryService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events/:event_id/tickets", h.GetTicketsByEvent)
		router.POST("events/:event_id/tickets", h.CreateTickets)
		router.GET("tickets/:id", h.GetTicket)
		router.GET("users/:user_id/tickets", h.GetTicketsByOwner)
	}
}

type createTicketsRequest struct {
	Seats []model.SeatInput `json:"seats" binding:"required,min=1"`
}

func (h *TicketHandler) CreateTickets(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		h.handleTicketError(c, apperrors.ErrInvalidInput, "CreateTickets")
		return
	}

	var req createTicketsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateTickets(c, eventID, req.Seats)
	if err != nil {
		h.handleTicketError(c, err, "CreateTickets")
		return
	}

	h.handleTicketSuccess(c, created, http.StatusCreated)
}

func (h *TicketHandler) GetTicketsByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		h.handleTicketError(c, apperrors.ErrInvalidInput, "GetTicketsByEvent")
		return
	}

	tickets, err := h.service.GetTicketsByEvent(c, eventID)
	if err != nil {
		h.handleTicketError(c, err, "GetTicketsByEvent")
		return
	}

	h.handleTicketSuccess(c, tickets, http.StatusOK)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.handleTicketError(c, apperrors.ErrInvalidInput, "GetTicket")
		return
	}

	ticket, err := h.service.GetTicketByID(c, ticketID)
	if err != nil {
		h.handleTicketError(c, err, "GetTicket")
		return
	}

	h.handleTicketSuccess(c, ticket, http.StatusOK)
}

func (h *TicketHandler) GetTicketsByOwner(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		h.handleTicketError(c, apperrors.ErrInvalidInput, "GetTicketsByOwner")
		return
	}
	includePrevious := c.Query("include_previous") == "true"

	tickets, err := h.service.GetTicketsByOwner(c, userID, includePrevious)
	if err != nil {
		h.handleTicketError(c, err, "GetTicketsByOwner")
		return
	}

	h.handleTicketSuccess(c, tickets, http.StatusOK)
}

// Helper functions

func (h *TicketHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *TicketHandler) handleTicketSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
