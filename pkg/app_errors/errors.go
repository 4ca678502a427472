package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSeatsUnavailable    = errors.New("seats not available")
	ErrTicketsNotReserved  = errors.New("tickets not in reserved state")
	ErrTicketNotSold       = errors.New("ticket not in sold state")
	ErrNotTicketOwner      = errors.New("ticket not owned by user")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)

// SeatsUnavailableError 列出所有不可預訂的座位，errors.Is 可對應到 ErrSeatsUnavailable
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatsUnavailableError) Is(target error) bool {
	return target == ErrSeatsUnavailable
}
