package services

import (
	"context"
	"ticket-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type SaleServiceMock struct {
	mock.Mock
}

func NewSaleServiceMock() *SaleServiceMock {
	return &SaleServiceMock{}
}

func (m *SaleServiceMock) Confirm(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string) (string, error) {
	args := m.Called(ctx, reservationID, userID, paymentIntentID)
	return args.String(0), args.Error(1)
}

func (m *SaleServiceMock) ConfirmSplit(ctx context.Context, reservationID uuid.UUID, userID int64, paymentIntentID string, ticketID int64) (string, error) {
	args := m.Called(ctx, reservationID, userID, paymentIntentID, ticketID)
	return args.String(0), args.Error(1)
}

func (m *SaleServiceMock) UpdatePreference(ctx context.Context, ticketID int64, preference model.SplitPreference) (string, error) {
	args := m.Called(ctx, ticketID, preference)
	return args.String(0), args.Error(1)
}

func (m *SaleServiceMock) Release(ctx context.Context, reservationID uuid.UUID) (string, error) {
	args := m.Called(ctx, reservationID)
	return args.String(0), args.Error(1)
}

func (m *SaleServiceMock) CancelEvent(ctx context.Context, eventID int64) ([]model.CancellationRecord, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CancellationRecord), args.Error(1)
}

func (m *SaleServiceMock) CancelTickets(ctx context.Context, ticketIDs []int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, ticketIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *SaleServiceMock) Transfer(ctx context.Context, ticketID int64, currentOwnerID int64, newOwnerID int64, paymentIntentID string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID, currentOwnerID, newOwnerID, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *SaleServiceMock) MarkTransferring(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}
