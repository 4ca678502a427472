package services

import (
	"context"
	"ticket-inventory/internal/model"

	"github.com/stretchr/testify/mock"
)

type InventoryServiceMock struct {
	mock.Mock
}

func NewInventoryServiceMock() *InventoryServiceMock {
	return &InventoryServiceMock{}
}

func (m *InventoryServiceMock) CreateTickets(ctx context.Context, eventID int64, seats []model.SeatInput) ([]*model.Ticket, error) {
	args := m.Called(ctx, eventID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *InventoryServiceMock) GetTicketsByEvent(ctx context.Context, eventID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *InventoryServiceMock) GetTicketByID(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *InventoryServiceMock) GetTicketsByOwner(ctx context.Context, userID int64, includePrevious bool) ([]*model.Ticket, error) {
	args := m.Called(ctx, userID, includePrevious)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}
