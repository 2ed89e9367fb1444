package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
)

// charactersRepository 人物组仓储实现
type charactersRepository struct {
	client *Client
}

// NewCharactersRepository 创建人物组仓储
func NewCharactersRepository(client *Client) repository.CharactersRepository {
	return &charactersRepository{client: client}
}

// Create 创建人物组
func (r *charactersRepository) Create(ctx context.Context, cast *entity.CharacterCast) error {
	ctx, span := tracer.Start(ctx, "CharactersRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("characters.id", cast.ID),
		attribute.String("characters.plot_id", cast.PlotID),
	)

	if err := getDB(ctx, r.client.db).Create(cast).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create character cast: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取人物组
func (r *charactersRepository) GetByID(ctx context.Context, id string) (*entity.CharacterCast, error) {
	ctx, span := tracer.Start(ctx, "CharactersRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("characters.id", id))

	var cast entity.CharacterCast
	err := getDB(ctx, r.client.db).Where("id = ?", id).First(&cast).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get character cast: %w", err)
	}
	return &cast, nil
}

// ListByUser 分页查询用户的人物组
func (r *charactersRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CharacterCast], error) {
	ctx, span := tracer.Start(ctx, "CharactersRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	db := getDB(ctx, r.client.db).Model(&entity.CharacterCast{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count character casts: %w", err)
	}

	var casts []*entity.CharacterCast
	err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&casts).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list character casts: %w", err)
	}

	return repository.NewPagedResult(casts, total, pagination), nil
}
