package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PaymentValidator 付款驗證協作方。回傳 error 時視同驗證失敗，
// 不會有 timeout 卻當成功的情況。
type PaymentValidator interface {
	ValidatePayment(ctx context.Context, paymentIntentID string, eventID int64, seats []string) (bool, error)
}

type HTTPPaymentClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPPaymentClient(baseURL string, timeout time.Duration) *HTTPPaymentClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPaymentClient{
		baseURL: baseURL,
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

type validatePaymentRequest struct {
	PaymentIntentID string   `json:"payment_intent_id"`
	EventID         int64    `json:"event_id"`
	Seats           []string `json:"seats"`
}

type validatePaymentResponse struct {
	Valid bool `json:"valid"`
}

func (c *HTTPPaymentClient) ValidatePayment(ctx context.Context, paymentIntentID string, eventID int64, seats []string) (bool, error) {
	body, err := json.Marshal(validatePaymentRequest{
		PaymentIntentID: paymentIntentID,
		EventID:         eventID,
		Seats:           seats,
	})
	if err != nil {
		return false, fmt.Errorf("marshal validate payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate-payment", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var result validatePaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode payment service response: %w", err)
	}

	return result.Valid, nil
}
