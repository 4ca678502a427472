package service

import (
	"context"
	"testing"

	"ticket-inventory/internal/model"
	"ticket-inventory/internal/repository"
	"ticket-inventory/internal/service"
	apperrors "ticket-inventory/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryService() service.InventoryService {
	repo := repository.NewTicketRepository(getTestDB())
	return service.NewInventoryService(getTestDB(), repo, nil)
}

func TestInventoryService_CreateTickets(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newInventoryService()
	ctx := context.Background()

	t.Run("creates seats with defaults", func(t *testing.T) {
		created, err := svc.CreateTickets(ctx, 1001, []model.SeatInput{
			{SeatNumber: "A1", Category: "vip", Price: 1500},
			{SeatNumber: "A2", Price: 500},
		})

		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, model.TicketCategoryVIP, created[0].Category)
		assert.Equal(t, model.TicketStatusAvailable, created[0].Status)
		// 未指定類別回退到 standard
		assert.Equal(t, model.TicketCategoryStandard, created[1].Category)
	})

	t.Run("skips existing seats", func(t *testing.T) {
		created, err := svc.CreateTickets(ctx, 1001, []model.SeatInput{
			{SeatNumber: "A1", Price: 1500},
			{SeatNumber: "A3", Price: 500},
		})

		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "A3", created[0].SeatNumber)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.CreateTickets(ctx, 1001, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestInventoryService_GetTicketsByEvent(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newInventoryService()
	ctx := context.Background()

	createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)
	createTestSeat(t, 1001, "A2", model.TicketStatusSold)
	createTestSeat(t, 2002, "A1", model.TicketStatusAvailable)

	tickets, err := svc.GetTicketsByEvent(ctx, 1001)

	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestInventoryService_GetTicketByID(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newInventoryService()
	ctx := context.Background()

	id := createTestSeat(t, 1001, "A1", model.TicketStatusAvailable)

	ticket, err := svc.GetTicketByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, ticket.TicketID)

	_, err = svc.GetTicketByID(ctx, 99999)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestInventoryService_GetTicketsByOwner(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	svc := newInventoryService()
	saleSvc := newSaleService()
	ctx := context.Background()

	createSoldSeat(t, 1001, "A1", 42, "pi_1")
	transferredID := createSoldSeat(t, 1001, "A2", 42, "pi_2")
	_, err := saleSvc.Transfer(ctx, transferredID, 42, 77, "pi_transfer")
	require.NoError(t, err)

	current, err := svc.GetTicketsByOwner(ctx, 42, false)
	require.NoError(t, err)
	assert.Len(t, current, 1)

	withPrevious, err := svc.GetTicketsByOwner(ctx, 42, true)
	require.NoError(t, err)
	assert.Len(t, withPrevious, 2)
}
