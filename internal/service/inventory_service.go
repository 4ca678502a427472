package service

import (
	"context"

	"ticket-inventory/internal/cache"
	"ticket-inventory/internal/model"
	"ticket-inventory/internal/repository"
	apperrors "ticket-inventory/pkg/app_errors"
	"ticket-inventory/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// InventoryService 票券庫存的建立與查詢
type InventoryService interface {
	// 批量建立活動座位，已存在的座位跳過
	CreateTickets(ctx context.Context, eventID int64, seats []model.SeatInput) ([]*model.Ticket, error)
	// 活動座位表，走快取
	GetTicketsByEvent(ctx context.Context, eventID int64) ([]*model.Ticket, error)
	GetTicketByID(ctx context.Context, ticketID int64) (*model.Ticket, error)
	// 使用者持有的票，includePrevious 時包含轉讓前持有的票
	GetTicketsByOwner(ctx context.Context, userID int64, includePrevious bool) ([]*model.Ticket, error)
}

type InventoryServiceImpl struct {
	pool       *pgxpool.Pool
	repository repository.TicketRepository
	seatCache  cache.AvailabilityCache
}

func NewInventoryService(
	pool *pgxpool.Pool,
	ticketRepository repository.TicketRepository,
	seatCache cache.AvailabilityCache,
) InventoryService {
	return &InventoryServiceImpl{
		pool:       pool,
		repository: ticketRepository,
		seatCache:  seatCache,
	}
}

func (s *InventoryServiceImpl) CreateTickets(ctx context.Context, eventID int64, seats []model.SeatInput) ([]*model.Ticket, error) {
	if len(seats) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]*model.Ticket, 0, len(seats))
	for _, seat := range seats {
		// 同一活動同一座位已存在就跳過
		_, err := s.repository.FindByEventAndSeat(ctx, eventID, seat.SeatNumber)
		if err == nil {
			continue
		}
		if err != apperrors.ErrTicketNotFound {
			return nil, err
		}

		// 無效類別與狀態退回預設值，跟建檔工具的寬鬆輸入對齊
		category := model.TicketCategory(seat.Category)
		if !category.IsValid() {
			category = model.TicketCategoryStandard
		}
		status := model.TicketStatus(seat.Status)
		if !status.IsValid() {
			status = model.TicketStatusAvailable
		}

		ticket, err := s.repository.Create(ctx, tx, &model.Ticket{
			EventID:    eventID,
			SeatNumber: seat.SeatNumber,
			Status:     status,
			Category:   category,
			Price:      seat.Price,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, ticket)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.seatCache != nil {
		if err := s.seatCache.Invalidate(context.Background(), eventID); err != nil {
			logger.WithComponent("inventory").Warn("invalidate seat cache failed", zap.Int64("event_id", eventID), zap.Error(err))
		}
	}

	logger.WithComponent("inventory").Info("tickets created", zap.Int64("event_id", eventID), zap.Int("count", len(created)))

	return created, nil
}

func (s *InventoryServiceImpl) GetTicketsByEvent(ctx context.Context, eventID int64) ([]*model.Ticket, error) {
	if s.seatCache != nil {
		tickets, err := s.seatCache.GetEventSeats(ctx, eventID)
		if err == nil {
			return tickets, nil
		}
		if err != cache.ErrCacheMiss {
			logger.WithComponent("inventory").Warn("read seat cache failed", zap.Int64("event_id", eventID), zap.Error(err))
		}
	}

	tickets, err := s.repository.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.seatCache != nil && len(tickets) > 0 {
		if err := s.seatCache.SetEventSeats(ctx, eventID, tickets); err != nil {
			logger.WithComponent("inventory").Warn("write seat cache failed", zap.Int64("event_id", eventID), zap.Error(err))
		}
	}

	return tickets, nil
}

func (s *InventoryServiceImpl) GetTicketByID(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	return s.repository.FindByTicketID(ctx, ticketID)
}

func (s *InventoryServiceImpl) GetTicketsByOwner(ctx context.Context, userID int64, includePrevious bool) ([]*model.Ticket, error) {
	return s.repository.FindByOwner(ctx, userID, includePrevious)
}
