package service

import (
	"context"
	"errors"
	"fmt"

	"ticket-inventory/internal/client"
	"ticket-inventory/internal/model"
	"ticket-inventory/internal/queue"
	apperrors "ticket-inventory/pkg/app_errors"
	"ticket-inventory/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService 跨服務訂票流程：驗證付款 → 確認庫存 → 通知。
// 三步不是一個交易；付款驗證通過後確認庫存失敗不會自動退款，
// 這個不一致窗口是已知限制，由呼叫端的補救流程處理。
type BookingService interface {
	ProcessBooking(ctx context.Context, req model.ProcessBookingRequest) *model.BookingResult
}

type BookingServiceImpl struct {
	payment       client.PaymentValidator
	sales         SaleService
	notifications queue.NotificationQueue
}

func NewBookingService(
	payment client.PaymentValidator,
	sales SaleService,
	notifications queue.NotificationQueue,
) BookingService {
	return &BookingServiceImpl{
		payment:       payment,
		sales:         sales,
		notifications: notifications,
	}
}

func (s *BookingServiceImpl) ProcessBooking(ctx context.Context, req model.ProcessBookingRequest) *model.BookingResult {
	log := logger.WithComponent("booking").With(
		zap.Int64("event_id", req.EventID),
		zap.String("payment_intent_id", req.PaymentIntentID),
		zap.String("reservation_id", req.ReservationID),
	)
	log.Info("processing booking", zap.Strings("seats", req.Seats))

	// 1. 驗證付款：只有明確的 valid 才算通過，傳輸失敗等同驗證失敗
	valid, err := s.payment.ValidatePayment(ctx, req.PaymentIntentID, req.EventID, req.Seats)
	if err != nil {
		log.Warn("payment validation call failed", zap.Error(err))
		return &model.BookingResult{
			Status:  model.BookingStatusFailed,
			Message: "Payment validation failed.",
		}
	}
	if !valid {
		log.Warn("payment rejected")
		return &model.BookingResult{
			Status:  model.BookingStatusFailed,
			Message: "Payment validation failed.",
		}
	}

	// 2. 確認庫存。走到這裡付款已經在外部完成，
	// 確認失敗時不補退款，只回報 FAILED
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		log.Warn("invalid reservation id", zap.Error(err))
		return &model.BookingResult{
			Status:  model.BookingStatusFailed,
			Message: "Failed to confirm seats in ticket inventory.",
		}
	}

	_, err = s.sales.Confirm(ctx, reservationID, req.UserID, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) || errors.Is(err, apperrors.ErrTicketsNotReserved) {
			log.Warn("inventory confirmation rejected", zap.Error(err))
			return &model.BookingResult{
				Status:  model.BookingStatusFailed,
				Message: "Failed to confirm seats in ticket inventory.",
			}
		}
		log.Error("inventory confirmation error", zap.Error(err))
		return &model.BookingResult{
			Status:  model.BookingStatusError,
			Message: "An error occurred while processing the booking.",
		}
	}

	// 3. 通知走 best effort，投遞失敗不影響訂票結果
	s.enqueueConfirmation(ctx, req, log)

	return &model.BookingResult{
		Status:  model.BookingStatusConfirmed,
		Message: fmt.Sprintf("Booking confirmed for event %d with payment ID %s", req.EventID, req.PaymentIntentID),
	}
}

func (s *BookingServiceImpl) enqueueConfirmation(ctx context.Context, req model.ProcessBookingRequest, log *zap.Logger) {
	if s.notifications == nil || req.RecipientEmail == "" {
		return
	}

	notification := &model.Notification{
		Subject: "Booking Confirmed",
		Message: fmt.Sprintf(
			"Your booking for event %d is confirmed. Seats: %v. Payment reference: %s.",
			req.EventID, req.Seats, req.PaymentIntentID,
		),
		RecipientEmail: req.RecipientEmail,
	}

	if err := s.notifications.PublishNotification(ctx, notification); err != nil {
		log.Warn("failed to enqueue confirmation notification", zap.Error(err))
	}
}
