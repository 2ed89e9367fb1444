package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
)

// decisionRepository 决策记录仓储实现
type decisionRepository struct {
	client *Client
}

// NewDecisionRepository 创建决策记录仓储
func NewDecisionRepository(client *Client) repository.DecisionRepository {
	return &decisionRepository{client: client}
}

// Create 写入决策记录，由 analytics-worker 消费流后调用
func (r *decisionRepository) Create(ctx context.Context, record *entity.DecisionRecord) error {
	ctx, span := tracer.Start(ctx, "DecisionRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("decision.request_id", record.RequestID),
		attribute.String("decision.workflow_type", record.WorkflowType),
	)

	if err := getDB(ctx, r.client.db).Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create decision record: %w", err)
	}
	return nil
}
