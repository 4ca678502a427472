package worker

import (
	"context"
	"time"

	"ticket-inventory/internal/service"
	"ticket-inventory/pkg/logger"

	"go.uber.org/zap"
)

// HoldSweeper 定時掃描逾期的座位保留並還原成 available。
// 保留時的 expires_at 與這裡的判斷共用同一個設定值，
// 單一掃描器取代每張票各掛一個 timer，對外行為等價。
type HoldSweeper interface {
	Start(ctx context.Context) error
}

type HoldSweeperImpl struct {
	reservations service.ReservationService
	interval     time.Duration
}

func NewHoldSweeper(reservations service.ReservationService, interval time.Duration) HoldSweeper {
	return &HoldSweeperImpl{
		reservations: reservations,
		interval:     interval,
	}
}

func (w *HoldSweeperImpl) Start(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.reservations.ReleaseExpired(ctx); err != nil {
					logger.WithComponent("worker").Error("release expired holds failed", zap.Error(err))
				}
			}
		}
	}()
	return nil
}
