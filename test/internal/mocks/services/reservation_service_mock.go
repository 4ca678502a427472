package services

import (
	"context"
	"ticket-inventory/internal/model"

	"github.com/stretchr/testify/mock"
)

type ReservationServiceMock struct {
	mock.Mock
}

func NewReservationServiceMock() *ReservationServiceMock {
	return &ReservationServiceMock{}
}

func (m *ReservationServiceMock) Reserve(ctx context.Context, eventID int64, seatNumbers []string, userID int64) (*model.ReservationResult, error) {
	args := m.Called(ctx, eventID, seatNumbers, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationResult), args.Error(1)
}

func (m *ReservationServiceMock) ReleaseExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
