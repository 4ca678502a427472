package model

// BookingStatus 訂票流程的最終狀態。FAILED 是業務拒絕，ERROR 是非預期錯誤，
// 呼叫端要分開對應。
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusFailed    BookingStatus = "FAILED"
	BookingStatusError     BookingStatus = "ERROR"
)

// ProcessBookingRequest 處理訂票請求
type ProcessBookingRequest struct {
	EventID         int64    `json:"event_id" binding:"required"`
	Seats           []string `json:"seats" binding:"required,min=1"`
	PaymentIntentID string   `json:"payment_intent_id" binding:"required"`
	ReservationID   string   `json:"reservation_id" binding:"required"`
	UserID          int64    `json:"user_id" binding:"required"`
	RecipientEmail  string   `json:"recipient_email"`
}

// BookingResult 訂票結果
type BookingResult struct {
	Status  BookingStatus `json:"status"`
	Message string        `json:"confirmation_message"`
}

// Notification 通知佇列的訊息內容
type Notification struct {
	NotificationID string `json:"notification_id"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecipientEmail string `json:"recipient_email"`
}
