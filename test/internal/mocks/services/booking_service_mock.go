package services

import (
	"context"
	"ticket-inventory/internal/model"

	"github.com/stretchr/testify/mock"
)

type BookingServiceMock struct {
	mock.Mock
}

func NewBookingServiceMock() *BookingServiceMock {
	return &BookingServiceMock{}
}

func (m *BookingServiceMock) ProcessBooking(ctx context.Context, req model.ProcessBookingRequest) *model.BookingResult {
	args := m.Called(ctx, req)
	return args.Get(0).(*model.BookingResult)
}
