package service

import (
	"context"
	"sort"
	"time"

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

type ReservationService interface {
	// 保留座位：全有或全無，成功後座位進入限時保留
	Reserve(ctx context.Context, eventID int64, seatNumbers []string, userID int64) (*model.ReservationResult, error)
	// 釋放逾期保留：掃描一輪，回傳釋放的座位數
	ReleaseExpired(ctx context.Context) (int64, error)
}

type ReservationServiceImpl struct {
	pool         *pgxpool.Pool
	repository   repository.TicketRepository
	seatCache    cache.AvailabilityCache
	holdDuration time.Duration
}

func NewReservationService(
	pool *pgxpool.Pool,
	ticketRepository repository.TicketRepository,
	seatCache cache.AvailabilityCache,
	holdDuration time.Duration,
) ReservationService {
	return &ReservationServiceImpl{
		pool:         pool,
		repository:   ticketRepository,
		seatCache:    seatCache,
		holdDuration: holdDuration,
	}
}

func (s *ReservationServiceImpl) Reserve(ctx context.Context, eventID int64, seatNumbers []string, userID int64) (*model.ReservationResult, error) {
	if len(seatNumbers) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// 固定加鎖順序，避免重疊的併發請求互相死鎖
	seats := make([]string, len(seatNumbers))
	copy(seats, seatNumbers)
	sort.Strings(seats)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 先鎖住並檢查所有座位，任何一個不可用就整筆失敗，不留部分保留
	ticketIDs := make([]int64, 0, len(seats))
	unavailable := make([]string, 0)
	for _, seatNumber := range seats {
		ticket, err := s.repository.FindByEventAndSeatWithLock(ctx, tx, eventID, seatNumber)
		if err != nil {
			if err == apperrors.ErrTicketNotFound {
				unavailable = append(unavailable, seatNumber)
				continue
			}
			return nil, err
		}
		if ticket.Status != model.TicketStatusAvailable {
			unavailable = append(unavailable, seatNumber)
			continue
		}
		ticketIDs = append(ticketIDs, ticket.TicketID)
	}

	if len(unavailable) > 0 {
		return nil, &apperrors.SeatsUnavailableError{Seats: unavailable}
	}

	// 2. 蓋上保留標記：同一個 reservation id、同一個到期時間
	reservationID := uuid.New()
	expiresAt := time.Now().UTC().Add(s.holdDuration)

	err = s.repository.MarkReserved(ctx, tx, ticketIDs, reservationID, expiresAt, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSeatCache(eventID)

	return &model.ReservationResult{
		ReservationID: reservationID,
		EventID:       eventID,
		ReservedSeats: seatNumbers,
		ExpiresAt:     expiresAt,
	}, nil
}

// ReleaseExpired 由 hold sweeper 定時呼叫。逾期判斷與 confirm/release 的競爭
// 交給資料庫決定：先提交的交易贏，輸的一方看到新狀態後不動作。
func (s *ReservationServiceImpl) ReleaseExpired(ctx context.Context) (int64, error) {
	released, err := s.repository.ReleaseExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if released > 0 {
		logger.WithComponent("reservation").Info("released expired holds", zap.Int64("count", released))
	}

	return released, nil
}

func (s *ReservationServiceImpl) invalidateSeatCache(eventID int64) {
	if s.seatCache == nil {
		return
	}
	// 快取失效失敗不影響主流程，TTL 會兜底
	if err := s.seatCache.Invalidate(context.Background(), eventID); err != nil {
		logger.WithComponent("reservation").Warn("invalidate seat cache failed", zap.Int64("event_id", eventID), zap.Error(err))
	}
}
