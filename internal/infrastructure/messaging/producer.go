package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/pkg/metrics"
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

// PublishDecision 发布编排决策记录
func (p *Producer) PublishDecision(ctx context.Context, record *entity.DecisionRecord) (string, error) {
	msg, err := NewMessage(record.RequestID, MessageTypeDecision, record.UserID, record.SessionID, record)
	if err != nil {
		metrics.DecisionPublishTotal.WithLabelValues("error").Inc()
		return "", err
	}

	msg.SetMetadata("request_id", record.RequestID)
	msg.SetMetadata("workflow_type", record.WorkflowType)

	id, err := p.Publish(ctx, StreamDecisionLog, msg)
	if err != nil {
		metrics.DecisionPublishTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.DecisionPublishTotal.WithLabelValues("success").Inc()
	return id, nil
}
