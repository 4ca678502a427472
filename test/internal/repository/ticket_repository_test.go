package repository

import (
	"context"
	"testing"
	"time"

	"ticket-inventory/internal/model"
	"ticket-inventory/internal/repository"
	apperrors "ticket-inventory/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beginTx(t *testing.T) (pgx.Tx, func()) {
	t.Helper()
	ctx := context.Background()

	tx, err := getTestDB().Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	return tx, func() { _ = tx.Rollback(ctx) }
}

func TestTicketRepository_Create(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	tx, err := getTestDB().Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	created, err := repo.Create(ctx, tx, &model.Ticket{
		EventID:    1001,
		SeatNumber: "A1",
		Status:     model.TicketStatusAvailable,
		Category:   model.TicketCategoryVIP,
		Price:      1500.0,
	})

	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.NotZero(t, created.TicketID)
	assert.Equal(t, int64(1001), created.EventID)
	assert.Equal(t, "A1", created.SeatNumber)
	assert.Equal(t, model.TicketStatusAvailable, created.Status)
	assert.Equal(t, model.TicketCategoryVIP, created.Category)
	assert.Equal(t, 1500.0, created.Price)
	assert.Nil(t, created.ReservationID)
	assert.Nil(t, created.OwnerUserID)
}

func TestTicketRepository_FindByTicketID(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		id := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)

		ticket, err := repo.FindByTicketID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, id, ticket.TicketID)
		assert.Equal(t, "A1", ticket.SeatNumber)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByTicketID(ctx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketRepository_FindByEventAndSeat(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
	createTestSeat(t, 1002, "A1", model.TicketStatusSold)

	ticket, err := repo.FindByEventAndSeat(ctx, 1001, "A1")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), ticket.EventID)
	assert.Equal(t, model.TicketStatusAvailable, ticket.Status)

	_, err = repo.FindByEventAndSeat(ctx, 1001, "Z99")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_FindByEventID(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	createTestSeat(t, 1001, "B2", model.TicketStatusAvailable)
	createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
	createTestSeat(t, 2002, "A1", model.TicketStatusAvailable)

	tickets, err := repo.FindByEventID(ctx, 1001)

	require.NoError(t, err)
	require.Len(t, tickets, 2)
	// 依座位號排序
	assert.Equal(t, "A1", tickets[0].SeatNumber)
	assert.Equal(t, "B2", tickets[1].SeatNumber)
}

func TestTicketRepository_MarkReserved(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	id1 := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
	id2 := createTestSeat(t, 1001, "A2", model.TicketStatusAvailable)

	reservationID := uuid.New()
	expiresAt := time.Now().UTC().Add(10 * time.Minute)

	t.Run("success", func(t *testing.T) {
		tx, rollback := beginTx(t)
		defer rollback()

		err := repo.MarkReserved(ctx, tx, []int64{id1, id2}, reservationID, expiresAt, 42)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		tickets, err := repo.FindByReservationID(ctx, reservationID)
		require.NoError(t, err)
		require.Len(t, tickets, 2)
		for _, ticket := range tickets {
			assert.Equal(t, model.TicketStatusReserved, ticket.Status)
			require.NotNil(t, ticket.ReservationID)
			assert.Equal(t, reservationID, *ticket.ReservationID)
			require.NotNil(t, ticket.ReservationExpires)
			assert.WithinDuration(t, expiresAt, *ticket.ReservationExpires, time.Second)
			require.NotNil(t, ticket.OwnerUserID)
			assert.Equal(t, int64(42), *ticket.OwnerUserID)
		}
	})

	t.Run("unknown ticket id fails whole batch", func(t *testing.T) {
		tx, rollback := beginTx(t)
		defer rollback()

		err := repo.MarkReserved(ctx, tx, []int64{id1, 99999}, uuid.New(), expiresAt, 42)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketRepository_MarkSold(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	reservationID := uuid.New()
	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	id := createReservedSeat(t, 1001, "A1", reservationID, expiresAt, 42)

	tx, rollback := beginTx(t)
	defer rollback()

	err := repo.MarkSold(ctx, tx, []int64{id}, 42, "pi_123")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	ticket, err := repo.FindByTicketID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusSold, ticket.Status)
	// 售出後保留欄位要清空
	assert.Nil(t, ticket.ReservationID)
	assert.Nil(t, ticket.ReservationExpires)
	require.NotNil(t, ticket.OwnerUserID)
	assert.Equal(t, int64(42), *ticket.OwnerUserID)
	require.NotNil(t, ticket.PaymentIntentID)
	assert.Equal(t, "pi_123", *ticket.PaymentIntentID)
}

func TestTicketRepository_ReleaseReservation(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	reservationID := uuid.New()
	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	id := createReservedSeat(t, 1001, "A1", reservationID, expiresAt, 42)

	tx, rollback := beginTx(t)
	defer rollback()

	err := repo.ReleaseReservation(ctx, tx, []int64{id})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	ticket, err := repo.FindByTicketID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusAvailable, ticket.Status)
	assert.Nil(t, ticket.ReservationID)
	assert.Nil(t, ticket.ReservationExpires)
	assert.Nil(t, ticket.OwnerUserID)
}

func TestTicketRepository_ReleaseExpired(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	now := time.Now().UTC()
	expiredID := createReservedSeat(t, 1001, "A1", uuid.New(), now.Add(-time.Minute), 42)
	activeID := createReservedSeat(t, 1001, "A2", uuid.New(), now.Add(10*time.Minute), 42)
	soldID := createSoldSeat(t, 1001, "A3", 42, "pi_123")

	released, err := repo.ReleaseExpired(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), released)
	// 只有逾期的 reserved 被還原
	assert.Equal(t, model.TicketStatusAvailable, getTicketStatus(t, expiredID))
	assert.Equal(t, model.TicketStatusReserved, getTicketStatus(t, activeID))
	assert.Equal(t, model.TicketStatusSold, getTicketStatus(t, soldID))
}

func TestTicketRepository_MarkCancelledByEvent(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	t.Run("cancels all event tickets", func(t *testing.T) {
		id1 := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
		id2 := createSoldSeat(t, 1001, "A2", 42, "pi_123")
		otherID := createTestSeat(t, 2002, "A1", model.TicketStatusAvailable)

		tx, rollback := beginTx(t)
		defer rollback()

		err := repo.MarkCancelledByEvent(ctx, tx, 1001)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, model.TicketStatusCancelled, getTicketStatus(t, id1))
		assert.Equal(t, model.TicketStatusCancelled, getTicketStatus(t, id2))
		assert.Equal(t, model.TicketStatusAvailable, getTicketStatus(t, otherID))
	})

	t.Run("unknown event", func(t *testing.T) {
		tx, rollback := beginTx(t)
		defer rollback()

		err := repo.MarkCancelledByEvent(ctx, tx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestTicketRepository_ResetToAvailable(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	soldID := createSoldSeat(t, 1001, "A1", 42, "pi_123")
	cancelledID := createTestSeat(t, 1001, "A2", model.TicketStatusCancelled)

	tx, rollback := beginTx(t)
	defer rollback()

	// 未知 id 直接跳過，只回傳實際重置的票
	tickets, err := repo.ResetToAvailable(ctx, tx, []int64{soldID, cancelledID, 99999})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	require.Len(t, tickets, 2)
	for _, ticket := range tickets {
		assert.Equal(t, model.TicketStatusAvailable, ticket.Status)
		assert.Nil(t, ticket.OwnerUserID)
		assert.Nil(t, ticket.PreviousOwnerUserID)
		assert.Nil(t, ticket.PaymentIntentID)
		assert.Nil(t, ticket.ReservationID)
		assert.Nil(t, ticket.SplitPreference)
	}
}

func TestTicketRepository_UpdateOwner(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	id := createSoldSeat(t, 1001, "A1", 42, "pi_123")

	tx, rollback := beginTx(t)
	defer rollback()

	updated, err := repo.UpdateOwner(ctx, tx, id, 42, 77, "pi_transfer")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	// 轉讓後保持 sold，前任持有人記錄在 previous_owner_user_id
	assert.Equal(t, model.TicketStatusSold, updated.Status)
	require.NotNil(t, updated.OwnerUserID)
	assert.Equal(t, int64(77), *updated.OwnerUserID)
	require.NotNil(t, updated.PreviousOwnerUserID)
	assert.Equal(t, int64(42), *updated.PreviousOwnerUserID)
	require.NotNil(t, updated.PaymentIntentID)
	assert.Equal(t, "pi_transfer", *updated.PaymentIntentID)
}

func TestTicketRepository_FindByOwner(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	ownedID := createSoldSeat(t, 1001, "A1", 42, "pi_1")
	transferredID := createSoldSeat(t, 1001, "A2", 42, "pi_2")

	tx, err := getTestDB().Begin(ctx)
	require.NoError(t, err)
	_, err = repo.UpdateOwner(ctx, tx, transferredID, 42, 77, "pi_transfer")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	t.Run("current owner only", func(t *testing.T) {
		tickets, err := repo.FindByOwner(ctx, 42, false)
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, ownedID, tickets[0].TicketID)
	})

	t.Run("include previous", func(t *testing.T) {
		tickets, err := repo.FindByOwner(ctx, 42, true)
		require.NoError(t, err)
		assert.Len(t, tickets, 2)
	})
}

func TestTicketRepository_UpdatePreference(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewTicketRepository(getTestDB())
	ctx := context.Background()

	id := createTestSeat(t, 1001, "A1", model.TicketStatusReserved)

	err := repo.UpdatePreference(ctx, id, model.SplitPreferenceRefund)
	require.NoError(t, err)

	ticket, err := repo.FindByTicketID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, ticket.SplitPreference)
	assert.Equal(t, model.SplitPreferenceRefund, *ticket.SplitPreference)

	err = repo.UpdatePreference(ctx, 99999, model.SplitPreferenceKeep)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}
