package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticket-inventory/internal/model"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache 活動座位表的短 TTL 快取。真實狀態永遠以資料庫為準，
// 寫入路徑負責失效，讀取路徑容許 TTL 內的舊值。
type AvailabilityCache interface {
	// 獲取：活動的座位快照，未命中回傳 ErrCacheMiss
	GetEventSeats(ctx context.Context, eventID int64) ([]*model.Ticket, error)
	// 寫入：活動的座位快照
	SetEventSeats(ctx context.Context, eventID int64, tickets []*model.Ticket) error
	// 失效：座位狀態變動後呼叫
	Invalidate(ctx context.Context, eventID int64) error
}

var ErrCacheMiss = redis.Nil

const seatSnapshotTTL = 5 * time.Second

type AvailabilityCacheImpl struct {
	client *redis.Client
}

func NewAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &AvailabilityCacheImpl{
		client: client,
	}
}

// 座位快照 key
func (c *AvailabilityCacheImpl) getSeatsKey(eventID int64) string {
	return fmt.Sprintf("event:%d:seats", eventID)
}

func (c *AvailabilityCacheImpl) GetEventSeats(ctx context.Context, eventID int64) ([]*model.Ticket, error) {
	key := c.getSeatsKey(eventID)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var tickets []*model.Ticket
	if err := json.Unmarshal([]byte(val), &tickets); err != nil {
		return nil, fmt.Errorf("invalid seat snapshot: %v", err)
	}

	return tickets, nil
}

func (c *AvailabilityCacheImpl) SetEventSeats(ctx context.Context, eventID int64, tickets []*model.Ticket) error {
	data, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("marshal seat snapshot: %v", err)
	}

	key := c.getSeatsKey(eventID)
	return c.client.Set(ctx, key, data, seatSnapshotTTL).Err()
}

func (c *AvailabilityCacheImpl) Invalidate(ctx context.Context, eventID int64) error {
	key := c.getSeatsKey(eventID)
	return c.client.Del(ctx, key).Err()
}
