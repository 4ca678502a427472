package service

import (
	"context"
	"fmt"

	"ticket-inventory/internal/cache"
	"ticket-inventory/internal/model"
	"ticket-inventory/internal/repository"
	apperrors "ticket-inventory/pkg/app_errors"
	"ticket-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SaleService 把保留中的座位完成銷售，以及售後的轉讓與取消
type SaleService interface {
	// 確認整組保留：全部售出或整筆拒絕
	Confirm(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string) (string, error)
	// 確認保留中的單張票，其餘座位不動（分票付款）
	ConfirmSplit(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string, ticketID int64) (string, error)
	// 記錄分票付款失敗時這個座位的處理偏好，不改變狀態
	UpdatePreference(ctx context.Context, ticketID int64, preference model.SplitPreference) (string, error)
	// 釋放整組保留，已轉出 reserved 的票視為已處理
	Release(ctx context.Context, reservationID uuid.UUID) (string, error)
	// 取消整個活動的票，sold 的票產出退款紀錄
	CancelEvent(ctx context.Context, eventID int64) ([]model.CancellationRecord, error)
	// 管理覆寫：把指定票券還原成 available，清掉持有人與付款資訊
	CancelTickets(ctx context.Context, ticketIDs []int64) ([]*model.Ticket, error)
	// 轉讓所有權，狀態維持 sold
	Transfer(ctx context.Context, ticketID int64, currentOwnerID int64, newOwnerID int64, paymentIntentID string) (*model.Ticket, error)
	// 轉讓付款流程進行中的過渡標記
	MarkTransferring(ctx context.Context, ticketID int64) (*model.Ticket, error)
}

type SaleServiceImpl struct {
	pool       *pgxpool.Pool
	repository repository.TicketRepository
	seatCache  cache.AvailabilityCache
}

func NewSaleService(
	pool *pgxpool.Pool,
	ticketRepository repository.TicketRepository,
	seatCache cache.AvailabilityCache,
) SaleService {
	return &SaleServiceImpl{
		pool:       pool,
		repository: ticketRepository,
		seatCache:  seatCache,
	}
}

func (s *SaleServiceImpl) Confirm(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string) (string, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	tickets, err := s.repository.FindByReservationIDWithLock(ctx, tx, reservationID)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "", apperrors.ErrReservationNotFound
	}

	// 任何一張不在 reserved 就整筆拒絕（已逾期、已售出、已取消都算）
	ticketIDs := make([]int64, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Status != model.TicketStatusReserved {
			return "", apperrors.ErrTicketsNotReserved
		}
		ticketIDs = append(ticketIDs, ticket.TicketID)
	}

	err = s.repository.MarkSold(ctx, tx, ticketIDs, userID, paymentIntentID)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	s.invalidateSeatCache(tickets[0].EventID)

	return fmt.Sprintf("Seat purchase confirmed for user ID: %d", userID), nil
}

func (s *SaleServiceImpl) ConfirmSplit(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string, ticketID int64) (string, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.repository.FindByTicketIDWithLock(ctx, tx, ticketID)
	if err != nil {
		return "", err
	}
	if ticket.ReservationID == nil || *ticket.ReservationID != reservationID {
		return "", apperrors.ErrReservationNotFound
	}
	if ticket.Status != model.TicketStatusReserved {
		return "", apperrors.ErrTicketsNotReserved
	}

	err = s.repository.MarkSold(ctx, tx, []int64{ticket.TicketID}, userID, paymentIntentID)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	s.invalidateSeatCache(ticket.EventID)

	return fmt.Sprintf("Seat %s purchase confirmed for user ID: %d", ticket.SeatNumber, userID), nil
}

func (s *SaleServiceImpl) UpdatePreference(ctx context.Context, ticketID int64, preference model.SplitPreference) (string, error) {
	if !preference.IsValid() {
		return "", apperrors.ErrInvalidInput
	}

	err := s.repository.UpdatePreference(ctx, ticketID, preference)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Preference updated for ticket ID: %d", ticketID), nil
}

func (s *SaleServiceImpl) Release(ctx context.Context, reservationID uuid.UUID) (string, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	tickets, err := s.repository.FindByReservationIDWithLock(ctx, tx, reservationID)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "", apperrors.ErrReservationNotFound
	}

	// 只釋放還在 reserved 的票，其餘狀態代表已被確認或清理過，跳過即冪等
	ticketIDs := make([]int64, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Status == model.TicketStatusReserved {
			ticketIDs = append(ticketIDs, ticket.TicketID)
		}
	}

	if len(ticketIDs) > 0 {
		if err := s.repository.ReleaseReservation(ctx, tx, ticketIDs); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	s.invalidateSeatCache(tickets[0].EventID)

	return "All seats released successfully", nil
}

func (s *SaleServiceImpl) CancelEvent(ctx context.Context, eventID int64) ([]model.CancellationRecord, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tickets, err := s.repository.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrEventNotFound
	}

	// sold 的票要產出退款紀錄，其他狀態直接取消
	records := make([]model.CancellationRecord, 0)
	for _, ticket := range tickets {
		if ticket.Status != model.TicketStatusSold {
			continue
		}
		record := model.CancellationRecord{
			TicketID:       ticket.TicketID,
			SeatNumber:     ticket.SeatNumber,
			PreviousStatus: ticket.Status,
			Price:          ticket.Price,
		}
		if ticket.OwnerUserID != nil {
			record.OwnerUserID = *ticket.OwnerUserID
		}
		if ticket.PaymentIntentID != nil {
			record.PaymentIntentID = *ticket.PaymentIntentID
		}
		records = append(records, record)
	}

	if err := s.repository.MarkCancelledByEvent(ctx, tx, eventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSeatCache(eventID)

	logger.WithComponent("sale").Info("event cancelled",
		zap.Int64("event_id", eventID),
		zap.Int("tickets", len(tickets)),
		zap.Int("refund_records", len(records)),
	)

	return records, nil
}

func (s *SaleServiceImpl) CancelTickets(ctx context.Context, ticketIDs []int64) ([]*model.Ticket, error) {
	if len(ticketIDs) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 找不到的 id 直接跳過，全部都找不到才算錯誤
	tickets, err := s.repository.ResetToAvailable(ctx, tx, ticketIDs)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrTicketNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	for _, ticket := range tickets {
		if !seen[ticket.EventID] {
			seen[ticket.EventID] = true
			s.invalidateSeatCache(ticket.EventID)
		}
	}

	return tickets, nil
}

func (s *SaleServiceImpl) Transfer(ctx context.Context, ticketID int64, currentOwnerID int64, newOwnerID int64, paymentIntentID string) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.repository.FindByTicketIDWithLock(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	// 轉讓可以從 sold 直接走，也可以從 mark-transferring 之後走
	if ticket.Status != model.TicketStatusSold && ticket.Status != model.TicketStatusTransferring {
		return nil, apperrors.ErrTicketNotSold
	}
	if ticket.OwnerUserID == nil || *ticket.OwnerUserID != currentOwnerID {
		return nil, apperrors.ErrNotTicketOwner
	}

	updated, err := s.repository.UpdateOwner(ctx, tx, ticketID, currentOwnerID, newOwnerID, paymentIntentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.WithComponent("sale").Info("ticket transferred",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("from_user", currentOwnerID),
		zap.Int64("to_user", newOwnerID),
	)

	return updated, nil
}

func (s *SaleServiceImpl) MarkTransferring(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.repository.FindByTicketIDWithLock(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.Status.CanTransitionTo(model.TicketStatusTransferring) {
		return nil, apperrors.ErrTicketNotSold
	}

	updated, err := s.repository.UpdateStatus(ctx, tx, ticketID, model.TicketStatusTransferring)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSeatCache(ticket.EventID)

	return updated, nil
}

func (s *SaleServiceImpl) invalidateSeatCache(eventID int64) {
	if s.seatCache == nil {
		return
	}
	if err := s.seatCache.Invalidate(context.Background(), eventID); err != nil {
		logger.WithComponent("sale").Warn("invalidate seat cache failed", zap.Int64("event_id", eventID), zap.Error(err))
	}
}
