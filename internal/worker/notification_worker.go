package worker

import (
	"context"

	"ticket-inventory/internal/model"
	"ticket-inventory/internal/queue"
	"ticket-inventory/pkg/logger"

	"go.uber.org/zap"
)

// NotificationSender 實際送信的協作方（email/SMS 由外部服務處理）
type NotificationSender interface {
	Send(ctx context.Context, notification *model.Notification) error
}

type NotificationWorker interface {
	// 訂閱通知隊列
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	sender NotificationSender
	queue  queue.NotificationQueue
}

func NewNotificationWorker(sender NotificationSender, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		sender: sender,
		queue:  queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.sender.Send(ctx, msg.Data)

			if err != nil {
				// 送信失敗交還隊列延遲重試
				logger.WithComponent("worker").Warn("send notification failed",
					zap.String("notification_id", msg.Data.NotificationID),
					zap.Error(err),
				)
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

// LogSender 把通知寫到 log 的 Sender，外部送信服務未接上時的預設實作
type LogSender struct{}

func (s *LogSender) Send(ctx context.Context, notification *model.Notification) error {
	logger.WithComponent("notification").Info("notification delivered",
		zap.String("subject", notification.Subject),
		zap.String("recipient", notification.RecipientEmail),
	)
	return nil
}
