package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus 座位票券狀態類型
type TicketStatus string

const (
	TicketStatusAvailable    TicketStatus = "available"
	TicketStatusReserved     TicketStatus = "reserved"
	TicketStatusSold         TicketStatus = "sold"
	TicketStatusCancelled    TicketStatus = "cancelled"
	TicketStatusTransferring TicketStatus = "transferring"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusAvailable, TicketStatusReserved, TicketStatusSold,
		TicketStatusCancelled, TicketStatusTransferring:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態。
// cancelled 是終點；任何狀態都可以因活動取消進入 cancelled。
// CancelTickets 的管理覆寫不走這張表。
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusAvailable:    {TicketStatusReserved, TicketStatusCancelled},
		TicketStatusReserved:     {TicketStatusSold, TicketStatusAvailable, TicketStatusCancelled},
		TicketStatusSold:         {TicketStatusSold, TicketStatusTransferring, TicketStatusCancelled},
		TicketStatusTransferring: {TicketStatusSold, TicketStatusCancelled},
		TicketStatusCancelled:    {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// TicketCategory 票券類別
type TicketCategory string

const (
	TicketCategoryStandard TicketCategory = "standard"
	TicketCategoryVIP      TicketCategory = "vip"
	TicketCategoryPremium  TicketCategory = "premium"
)

func (c TicketCategory) IsValid() bool {
	switch c {
	case TicketCategoryStandard, TicketCategoryVIP, TicketCategoryPremium:
		return true
	}
	return false
}

// SplitPreference 分票付款失敗時這個座位的處理方式
type SplitPreference string

const (
	SplitPreferenceKeep   SplitPreference = "keep"
	SplitPreferenceRefund SplitPreference = "refund"
)

func (p SplitPreference) IsValid() bool {
	return p == SplitPreferenceKeep || p == SplitPreferenceRefund
}

// Ticket 座位票券模型。reservation_id 與 reservation_expires_at 必同生同滅，
// 且只在 reserved 狀態非空。
type Ticket struct {
	TicketID            int64           `json:"ticket_id" db:"ticket_id"`
	EventID             int64           `json:"event_id" db:"event_id"`
	SeatNumber          string          `json:"seat_number" db:"seat_number"`
	Status              TicketStatus    `json:"status" db:"status"`
	Category            TicketCategory  `json:"category" db:"category"`
	Price               float64         `json:"price" db:"price"`
	ReservationID       *uuid.UUID      `json:"reservation_id,omitempty" db:"reservation_id"`
	ReservationExpires  *time.Time      `json:"reservation_expires_at,omitempty" db:"reservation_expires_at"`
	OwnerUserID         *int64          `json:"owner_user_id,omitempty" db:"owner_user_id"`
	PreviousOwnerUserID *int64          `json:"previous_owner_user_id,omitempty" db:"previous_owner_user_id"`
	PaymentIntentID     *string         `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	SplitPreference     *SplitPreference `json:"split_preference,omitempty" db:"split_preference"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// IsReserved 檢查票券是否在有效的保留狀態
func (t *Ticket) IsReserved() bool {
	return t.Status == TicketStatusReserved
}

// ReservationResult 成功保留座位的結果
type ReservationResult struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	EventID       int64     `json:"event_id"`
	ReservedSeats []string  `json:"reserved_seats"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CancellationRecord 活動取消時產出給退款流程的紀錄，只有 sold 的票會產生
type CancellationRecord struct {
	TicketID        int64        `json:"ticket_id"`
	SeatNumber      string       `json:"seat_number"`
	OwnerUserID     int64        `json:"user_id"`
	PaymentIntentID string       `json:"payment_intent_id"`
	PreviousStatus  TicketStatus `json:"previous_status"`
	Price           float64      `json:"price"`
}

// SeatInput 建立票券時的單一座位資料
type SeatInput struct {
	SeatNumber string  `json:"seat_number" binding:"required"`
	Category   string  `json:"category"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
}

// ReserveSeatsRequest 保留座位請求
type ReserveSeatsRequest struct {
	EventID int64    `json:"event_id" binding:"required"`
	UserID  int64    `json:"user_id" binding:"required"`
	Seats   []string `json:"seats" binding:"required,min=1"`
}

// ConfirmRequest 確認購買請求。TicketID 非零時只確認該張票（分票付款）。
type ConfirmRequest struct {
	ReservationID   string `json:"reservation_id" binding:"required"`
	UserID          int64  `json:"user_id" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	TicketID        int64  `json:"ticket_id"`
}

// TransferRequest 轉讓請求
type TransferRequest struct {
	TicketID        int64  `json:"ticket_id" binding:"required"`
	CurrentUserID   int64  `json:"current_user_id" binding:"required"`
	NewUserID       int64  `json:"new_user_id" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}
