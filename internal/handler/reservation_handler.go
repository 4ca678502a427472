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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	reservations service.ReservationService
	sales        service.SaleService
}

func NewReservationHandler(reservations service.ReservationService, sales service.SaleService) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		sales:        sales,
	}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("reservations", h.ReserveSeats)
		router.POST("reservations/confirm", h.ConfirmSeats)
		router.PUT("reservations/:reservation_id/release", h.ReleaseSeats)
		router.PUT("tickets/:id/preference", h.UpdatePreference)
		router.POST("tickets/transfer", h.TransferTicket)
		router.PUT("tickets/:id/transferring", h.MarkTransferring)
		router.PUT("events/:event_id/cancel", h.CancelEvent)
		router.PUT("tickets/cancel", h.CancelTickets)
	}
}

func (h *ReservationHandler) ReserveSeats(c *gin.Context) {
	var req model.ReserveSeatsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.reservations.Reserve(c, req.EventID, req.Seats, req.UserID)
	if err != nil {
		h.handleReservationError(c, err, "ReserveSeats")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ReservationHandler) ConfirmSeats(c *gin.Context) {
	var req model.ConfirmRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		h.handleReservationError(c, apperrors.ErrInvalidInput, "ConfirmSeats")
		return
	}

	// ticket_id 有帶時只確認該張票（分票付款），否則確認整組保留
	var message string
	if req.TicketID != 0 {
		message, err = h.sales.ConfirmSplit(c, reservationID, req.UserID, req.PaymentIntentID, req.TicketID)
	} else {
		message, err = h.sales.Confirm(c, reservationID, req.UserID, req.PaymentIntentID)
	}
	if err != nil {
		h.handleReservationError(c, err, "ConfirmSeats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *ReservationHandler) ReleaseSeats(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("reservation_id"))
	if err != nil {
		h.handleReservationError(c, apperrors.ErrInvalidInput, "ReleaseSeats")
		return
	}

	message, err := h.sales.Release(c, reservationID)
	if err != nil {
		h.handleReservationError(c, err, "ReleaseSeats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

type updatePreferenceRequest struct {
	Preference model.SplitPreference `json:"preference" binding:"required"`
}

func (h *ReservationHandler) UpdatePreference(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.handleReservationError(c, apperrors.ErrInvalidInput, "UpdatePreference")
		return
	}

	var req updatePreferenceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	message, err := h.sales.UpdatePreference(c, ticketID, req.Preference)
	if err != nil {
		h.handleReservationError(c, err, "UpdatePreference")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *ReservationHandler) TransferTicket(c *gin.Context) {
	var req model.TransferRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	ticket, err := h.sales.Transfer(c, req.TicketID, req.CurrentUserID, req.NewUserID, req.PaymentIntentID)
	if err != nil {
		h.handleReservationError(c, err, "TransferTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *ReservationHandler) MarkTransferring(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.handleReservationError(c, apperrors.ErrInvalidInput, "MarkTransferring")
		return
	}

	ticket, err := h.sales.MarkTransferring(c, ticketID)
	if err != nil {
		h.handleReservationError(c, err, "MarkTransferring")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *ReservationHandler) CancelEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		h.handleReservationError(c, apperrors.ErrInvalidInput, "CancelEvent")
		return
	}

	records, err := h.sales.CancelEvent(c, eventID)
	if err != nil {
		h.handleReservationError(c, err, "CancelEvent")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancellations": records})
}

type cancelTicketsRequest struct {
	TicketIDs []int64 `json:"ticket_ids" binding:"required,min=1"`
}

func (h *ReservationHandler) CancelTickets(c *gin.Context) {
	var req cancelTicketsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	tickets, err := h.sales.CancelTickets(c, req.TicketIDs)
	if err != nil {
		h.handleReservationError(c, err, "CancelTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// Helper functions

func (h *ReservationHandler) handleReservationError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var seatsErr *apperrors.SeatsUnavailableError
	if errors.As(err, &seatsErr) {
		log.Warn("Seats unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error":             "Seats unavailable",
			"unavailable_seats": seatsErr.Seats,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrSeatsUnavailable):
		log.Warn("Seats unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seats unavailable",
		})
	case errors.Is(err, apperrors.ErrTicketsNotReserved):
		log.Warn("Tickets not reserved")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Tickets not in reserved state",
		})
	case errors.Is(err, apperrors.ErrTicketNotSold):
		log.Warn("Ticket not sold")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket not in a transferable state",
		})
	case errors.Is(err, apperrors.ErrNotTicketOwner):
		log.Warn("Not ticket owner")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Ticket does not belong to the requesting user",
		})
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
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
