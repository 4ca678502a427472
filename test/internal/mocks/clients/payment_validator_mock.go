package clients

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type PaymentValidatorMock struct {
	mock.Mock
}

func NewPaymentValidatorMock() *PaymentValidatorMock {
	return &PaymentValidatorMock{}
}

func (m *PaymentValidatorMock) ValidatePayment(ctx context.Context, paymentIntentID string, eventID int64, seats []string) (bool, error) {
	args := m.Called(ctx, paymentIntentID, eventID, seats)
	return args.Bool(0), args.Error(1)
}
