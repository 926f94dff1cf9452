// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// EnqueueJob 发布工作流任务，实现工作流服务的入队端口
func (p *Producer) EnqueueJob(ctx context.Context, jobID string) error {
	msg, err := NewMessage(jobID, TypeWorkflowJob, "", WorkflowJobMessage{JobID: jobID})
	if err != nil {
		return err
	}
	_, err = p.Publish(ctx, StreamWorkflowJobs, msg)
	return err
}

// PublishNotification 发布通知消息
func (p *Producer) PublishNotification(ctx context.Context, accountID string, notification NotificationMessage) (string, error) {
	msg, err := NewMessage(notification.Email, TypeNotification, accountID, notification)
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, StreamNotifications, msg)
}
