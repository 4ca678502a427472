package repository

import (
	"context"
	"time"

	"ticket-inventory/internal/model"
	apperrors "ticket-inventory/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByTicketID(ctx context.Context, ticketID int64) (*model.Ticket, error)
	FindByEventID(ctx context.Context, eventID int64) ([]*model.Ticket, error)
	FindByEventAndSeat(ctx context.Context, eventID int64, seatNumber string) (*model.Ticket, error)
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*model.Ticket, error)
	FindByOwner(ctx context.Context, userID int64, includePrevious bool) ([]*model.Ticket, error)
	UpdatePreference(ctx context.Context, ticketID int64, preference model.SplitPreference) error
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindByEventAndSeatWithLock(ctx context.Context, tx pgx.Tx, eventID int64, seatNumber string) (*model.Ticket, error)
	FindByTicketIDWithLock(ctx context.Context, tx pgx.Tx, ticketID int64) (*model.Ticket, error)
	FindByReservationIDWithLock(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) ([]*model.Ticket, error)
	FindByEventIDWithLock(ctx context.Context, tx pgx.Tx, eventID int64) ([]*model.Ticket, error)
	FindByTicketIDsWithLock(ctx context.Context, tx pgx.Tx, ticketIDs []int64) ([]*model.Ticket, error)
	MarkReserved(ctx context.Context, tx pgx.Tx, ticketIDs []int64, reservationID uuid.UUID, expiresAt time.Time, userID int64) error
	MarkSold(ctx context.Context, tx pgx.Tx, ticketIDs []int64, userID int64, paymentIntentID string) error
	ReleaseReservation(ctx context.Context, tx pgx.Tx, ticketIDs []int64) error
	MarkCancelledByEvent(ctx context.Context, tx pgx.Tx, eventID int64) error
	ResetToAvailable(ctx context.Context, tx pgx.Tx, ticketIDs []int64) ([]*model.Ticket, error)
	UpdateOwner(ctx context.Context, tx pgx.Tx, ticketID int64, previousOwnerID int64, newOwnerID int64, paymentIntentID string) (*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, ticketID int64, status model.TicketStatus) (*model.Ticket, error)
}

const ticketColumns = `
	ticket_id, event_id, seat_number, status, category, price,
	reservation_id, reservation_expires_at, owner_user_id, previous_owner_user_id,
	payment_intent_id, split_preference, created_at, updated_at`

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.TicketID,
		&ticket.EventID,
		&ticket.SeatNumber,
		&ticket.Status,
		&ticket.Category,
		&ticket.Price,
		&ticket.ReservationID,
		&ticket.ReservationExpires,
		&ticket.OwnerUserID,
		&ticket.PreviousOwnerUserID,
		&ticket.PaymentIntentID,
		&ticket.SplitPreference,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]*model.Ticket, error) {
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (event_id, seat_number, status, category, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + ticketColumns

	return scanTicket(tx.QueryRow(ctx, query,
		ticket.EventID, ticket.SeatNumber, ticket.Status, ticket.Category, ticket.Price,
	))
}

func (r *TicketRepositoryImpl) FindByTicketID(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByEventID(ctx context.Context, eventID int64) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1
		ORDER BY seat_number
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) FindByEventAndSeat(ctx context.Context, eventID int64, seatNumber string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND seat_number = $2
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, eventID, seatNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY seat_number
	`

	rows, err := r.pool.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) FindByOwner(ctx context.Context, userID int64, includePrevious bool) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE owner_user_id = $1
		ORDER BY event_id, seat_number
	`
	if includePrevious {
		query = `
			SELECT ` + ticketColumns + `
			FROM tickets
			WHERE owner_user_id = $1 OR previous_owner_user_id = $1
			ORDER BY event_id, seat_number
		`
	}

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) UpdatePreference(ctx context.Context, ticketID int64, preference model.SplitPreference) error {
	query := `
		UPDATE tickets
		SET split_preference = $1, updated_at = $2
		WHERE ticket_id = $3
	`

	result, err := r.pool.Exec(ctx, query, preference, time.Now().UTC(), ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

// ReleaseExpired 把保留逾期的票一次還原成 available。
// 條件限定 status = 'reserved'，與同張票上的 confirm/release 競爭時由行鎖決定贏家，
// 輸家在這裡不會再動到該列。
func (r *TicketRepositoryImpl) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE tickets
		SET status = 'available',
			reservation_id = NULL,
			reservation_expires_at = NULL,
			owner_user_id = NULL,
			updated_at = $1
		WHERE status = 'reserved' AND reservation_expires_at <= $2
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

func (r *TicketRepositoryImpl) FindByEventAndSeatWithLock(ctx context.Context, tx pgx.Tx, eventID int64, seatNumber string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND seat_number = $2
		FOR UPDATE
	`

	ticket, err := scanTicket(tx.QueryRow(ctx, query, eventID, seatNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByTicketIDWithLock(ctx context.Context, tx pgx.Tx, ticketID int64) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_id = $1
		FOR UPDATE
	`

	ticket, err := scanTicket(tx.QueryRow(ctx, query, ticketID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByReservationIDWithLock(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY ticket_id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) FindByEventIDWithLock(ctx context.Context, tx pgx.Tx, eventID int64) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1
		ORDER BY ticket_id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) FindByTicketIDsWithLock(ctx context.Context, tx pgx.Tx, ticketIDs []int64) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_id = ANY($1)
		ORDER BY ticket_id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) MarkReserved(ctx context.Context, tx pgx.Tx, ticketIDs []int64, reservationID uuid.UUID, expiresAt time.Time, userID int64) error {
	query := `
		UPDATE tickets
		SET status = 'reserved',
			reservation_id = $1,
			reservation_expires_at = $2,
			owner_user_id = $3,
			updated_at = $4
		WHERE ticket_id = ANY($5)
	`

	result, err := tx.Exec(ctx, query, reservationID, expiresAt, userID, time.Now().UTC(), ticketIDs)
	if err != nil {
		return err
	}

	if result.RowsAffected() != int64(len(ticketIDs)) {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) MarkSold(ctx context.Context, tx pgx.Tx, ticketIDs []int64, userID int64, paymentIntentID string) error {
	query := `
		UPDATE tickets
		SET status = 'sold',
			reservation_id = NULL,
			reservation_expires_at = NULL,
			owner_user_id = $1,
			payment_intent_id = $2,
			updated_at = $3
		WHERE ticket_id = ANY($4)
	`

	result, err := tx.Exec(ctx, query, userID, paymentIntentID, time.Now().UTC(), ticketIDs)
	if err != nil {
		return err
	}

	if result.RowsAffected() != int64(len(ticketIDs)) {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) ReleaseReservation(ctx context.Context, tx pgx.Tx, ticketIDs []int64) error {
	query := `
		UPDATE tickets
		SET status = 'available',
			reservation_id = NULL,
			reservation_expires_at = NULL,
			owner_user_id = NULL,
			updated_at = $1
		WHERE ticket_id = ANY($2)
	`

	_, err := tx.Exec(ctx, query, time.Now().UTC(), ticketIDs)
	return err
}

func (r *TicketRepositoryImpl) MarkCancelledByEvent(ctx context.Context, tx pgx.Tx, eventID int64) error {
	query := `
		UPDATE tickets
		SET status = 'cancelled',
			reservation_id = NULL,
			reservation_expires_at = NULL,
			updated_at = $1
		WHERE event_id = $2
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), eventID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) ResetToAvailable(ctx context.Context, tx pgx.Tx, ticketIDs []int64) ([]*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = 'available',
			reservation_id = NULL,
			reservation_expires_at = NULL,
			owner_user_id = NULL,
			previous_owner_user_id = NULL,
			payment_intent_id = NULL,
			split_preference = NULL,
			updated_at = $1
		WHERE ticket_id = ANY($2)
		RETURNING ` + ticketColumns

	rows, err := tx.Query(ctx, query, time.Now().UTC(), ticketIDs)
	if err != nil {
		return nil, err
	}

	return scanTickets(rows)
}

func (r *TicketRepositoryImpl) UpdateOwner(ctx context.Context, tx pgx.Tx, ticketID int64, previousOwnerID int64, newOwnerID int64, paymentIntentID string) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET owner_user_id = $1,
			previous_owner_user_id = $2,
			payment_intent_id = $3,
			status = 'sold',
			updated_at = $4
		WHERE ticket_id = $5
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(tx.QueryRow(ctx, query, newOwnerID, previousOwnerID, paymentIntentID, time.Now().UTC(), ticketID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, ticketID int64, status model.TicketStatus) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE ticket_id = $3
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(tx.QueryRow(ctx, query, status, time.Now().UTC(), ticketID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}
