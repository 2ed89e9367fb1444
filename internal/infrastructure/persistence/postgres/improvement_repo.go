package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
)

// improvementRepository 迭代改进会话仓储实现
type improvementRepository struct {
	client *Client
}

// NewImprovementRepository 创建迭代改进会话仓储
func NewImprovementRepository(client *Client) repository.ImprovementRepository {
	return &improvementRepository{client: client}
}

// Save 持久化会话及其全部迭代记录。
// 会话主行按主键 upsert，迭代记录仅插入新行。
func (r *improvementRepository) Save(ctx context.Context, session *entity.ImprovementSession) error {
	ctx, span := tracer.Start(ctx, "ImprovementRepository.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("improvement.id", session.ID),
		attribute.String("improvement.status", string(session.Status)),
		attribute.Int("improvement.iterations", session.IterationCount),
	)

	err := getDB(ctx, r.client.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"final_content", "iteration_count", "status", "updated_at",
			}),
		}).
		Create(session).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save improvement session: %w", err)
	}
	return nil
}

// GetByID 获取会话及其迭代记录
func (r *improvementRepository) GetByID(ctx context.Context, id string) (*entity.ImprovementSession, error) {
	ctx, span := tracer.Start(ctx, "ImprovementRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("improvement.id", id))

	var session entity.ImprovementSession
	err := getDB(ctx, r.client.db).
		Preload("Iterations", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get improvement session: %w", err)
	}
	return &session, nil
}
