// Package notify 通过 Redis Stream 投递通知，
// 实际发送（邮件/推送）由外部通知服务消费流完成。
package notify

import (
	"context"

	"ai-content-gateway/internal/infrastructure/messaging"
)

// StreamNotifier 把通知发布到通知流
type StreamNotifier struct {
	producer *messaging.Producer
}

// NewStreamNotifier 创建通知器
func NewStreamNotifier(producer *messaging.Producer) *StreamNotifier {
	return &StreamNotifier{producer: producer}
}

// Notify 投递一条通知。投递即忘，调用方不依赖送达。
func (n *StreamNotifier) Notify(ctx context.Context, accountEmail, subject, message string) error {
	_, err := n.producer.PublishNotification(ctx, "", messaging.NotificationMessage{
		Email:   accountEmail,
		Subject: subject,
		Body:    message,
	})
	return err
}
