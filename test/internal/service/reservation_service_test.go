package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ticket-inventory/internal/model"
	"ticket-inventory/internal/repository"
	"ticket-inventory/internal/service"
	apperrors "ticket-inventory/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHoldDuration = 10 * time.Minute

func newReservationService() service.ReservationService {
	repo := repository.NewTicketRepository(getTestDB())
	return service.NewReservationService(getTestDB(), repo, nil, testHoldDuration)
}

func TestReservationService_Reserve(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newReservationService()
	ctx := context.Background()

	t.Run("success reserves all seats under one reservation", func(t *testing.T) {
		id1 := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
		id2 := createTestSeat(t, 1001, "A2", model.TicketStatusAvailable)

		before := time.Now().UTC()
		result, err := svc.Reserve(ctx, 1001, []string{"A1", "A2"}, 42)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.ReservationID)
		assert.Equal(t, []string{"A1", "A2"}, result.ReservedSeats)
		assert.WithinDuration(t, before.Add(testHoldDuration), result.ExpiresAt, 5*time.Second)

		for _, id := range []int64{id1, id2} {
			ticket := getTicketByID(t, id)
			assert.Equal(t, model.TicketStatusReserved, ticket.Status)
			require.NotNil(t, ticket.ReservationID)
			assert.Equal(t, result.ReservationID, *ticket.ReservationID)
			require.NotNil(t, ticket.OwnerUserID)
			assert.Equal(t, int64(42), *ticket.OwnerUserID)
		}
	})

	t.Run("unknown seat fails whole group and names it", func(t *testing.T) {
		setupTestWithTruncate(t)
		id := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)

		_, err := svc.Reserve(ctx, 1001, []string{"A1", "Z99"}, 42)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSeatsUnavailable)
		var seatsErr *apperrors.SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		assert.Equal(t, []string{"Z99"}, seatsErr.Seats)

		// 全有或全無：A1 不能留在保留狀態
		assert.Equal(t, model.TicketStatusAvailable, getTicketByID(t, id).Status)
	})

	t.Run("already reserved seat fails whole group", func(t *testing.T) {
		setupTestWithTruncate(t)
		freeID := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
		createReservedSeat(t, 1001, "A2", uuid.New(), time.Now().UTC().Add(time.Minute), 7)

		_, err := svc.Reserve(ctx, 1001, []string{"A1", "A2"}, 42)

		var seatsErr *apperrors.SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		assert.Equal(t, []string{"A2"}, seatsErr.Seats)
		assert.Equal(t, model.TicketStatusAvailable, getTicketByID(t, freeID).Status)
	})

	t.Run("collects every unavailable seat", func(t *testing.T) {
		setupTestWithTruncate(t)
		createTestSeat(t, 1001, "A1", model.TicketStatusSold)
		createTestSeat(t, 1001, "A2", model.TicketStatusCancelled)
		createTestSeat(t, 1001, "A3", model.TicketStatusAvailable)

		_, err := svc.Reserve(ctx, 1001, []string{"A1", "A2", "A3"}, 42)

		var seatsErr *apperrors.SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		assert.ElementsMatch(t, []string{"A1", "A2"}, seatsErr.Seats)
	})

	t.Run("empty seat list", func(t *testing.T) {
		_, err := svc.Reserve(ctx, 1001, nil, 42)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

// 兩個重疊的併發請求只能有一個拿到座位
func TestReservationService_Reserve_ConcurrentOverlap(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newReservationService()
	ctx := context.Background()

	createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
	createTestSeat(t, 1001, "A2", model.TicketStatusAvailable)
	createTestSeat(t, 1001, "A3", model.TicketStatusAvailable)

	concurrentUsers := 20
	var wg sync.WaitGroup
	successCount := 0
	failCount := 0
	var mu sync.Mutex

	for i := 0; i < concurrentUsers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()

			// 交錯順序給座位，鎖定順序固定後不該死鎖
			seats := []string{"A1", "A2", "A3"}
			if userID%2 == 0 {
				seats = []string{"A3", "A1", "A2"}
			}

			_, err := svc.Reserve(ctx, 1001, seats, userID)

			mu.Lock()
			if err == nil {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}(int64(i + 1))
	}

	wg.Wait()

	t.Logf("%d users competing for the same seats - Success: %d, Failed: %d", concurrentUsers, successCount, failCount)
	assert.Equal(t, 1, successCount, "Exactly one reservation should win")
	assert.Equal(t, concurrentUsers-1, failCount)
}

func TestReservationService_ReleaseExpired(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newReservationService()
	ctx := context.Background()

	now := time.Now().UTC()
	expiredID := createReservedSeat(t, 1001, "A1", uuid.New(), now.Add(-time.Second), 42)
	activeID := createReservedSeat(t, 1001, "A2", uuid.New(), now.Add(10*time.Minute), 42)

	released, err := svc.ReleaseExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	expired := getTicketByID(t, expiredID)
	assert.Equal(t, model.TicketStatusAvailable, expired.Status)
	assert.Nil(t, expired.ReservationID)
	assert.Nil(t, expired.OwnerUserID)

	assert.Equal(t, model.TicketStatusReserved, getTicketByID(t, activeID).Status)
}
