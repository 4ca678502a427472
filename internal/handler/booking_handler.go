package handler

import (
	"net/http"
	"ticket-inventory/internal/model"
	"ticket-inventory/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("bookings", h.ProcessBooking)
	}
}

// ProcessBooking 業務上的拒絕（FAILED）與非預期錯誤（ERROR）都帶結果回 200，
// 狀態區分放在 response body，由呼叫端決定下一步。
func (h *BookingHandler) ProcessBooking(c *gin.Context) {
	var req model.ProcessBookingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result := h.service.ProcessBooking(c, req)
	c.JSON(http.StatusOK, result)
}
