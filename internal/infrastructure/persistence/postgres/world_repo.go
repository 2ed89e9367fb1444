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

// worldRepository 世界观仓储实现
type worldRepository struct {
	client *Client
}

// NewWorldRepository 创建世界观仓储
func NewWorldRepository(client *Client) repository.WorldRepository {
	return &worldRepository{client: client}
}

// Create 创建世界观
func (r *worldRepository) Create(ctx context.Context, world *entity.WorldBuilding) error {
	ctx, span := tracer.Start(ctx, "WorldRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("world.id", world.ID),
		attribute.String("world.plot_id", world.PlotID),
	)

	if err := getDB(ctx, r.client.db).Create(world).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create world building: %w", err)
	}
	return nil
}

// Update 整体保存世界观
func (r *worldRepository) Update(ctx context.Context, world *entity.WorldBuilding) error {
	ctx, span := tracer.Start(ctx, "WorldRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("world.id", world.ID))

	if err := getDB(ctx, r.client.db).Save(world).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update world building: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取世界观
func (r *worldRepository) GetByID(ctx context.Context, id string) (*entity.WorldBuilding, error) {
	ctx, span := tracer.Start(ctx, "WorldRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("world.id", id))

	var world entity.WorldBuilding
	err := getDB(ctx, r.client.db).Where("id = ?", id).First(&world).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get world building: %w", err)
	}
	return &world, nil
}

// GetByPlotID 根据情节 ID 获取最新的世界观
func (r *worldRepository) GetByPlotID(ctx context.Context, plotID string) (*entity.WorldBuilding, error) {
	ctx, span := tracer.Start(ctx, "WorldRepository.GetByPlotID")
	defer span.End()
	span.SetAttributes(attribute.String("world.plot_id", plotID))

	var world entity.WorldBuilding
	err := getDB(ctx, r.client.db).
		Where("plot_id = ?", plotID).
		Order("created_at DESC").
		First(&world).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get world building by plot: %w", err)
	}
	return &world, nil
}

// ListByUser 分页查询用户的世界观
func (r *worldRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.WorldBuilding], error) {
	ctx, span := tracer.Start(ctx, "WorldRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	db := getDB(ctx, r.client.db).Model(&entity.WorldBuilding{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count world buildings: %w", err)
	}

	var worlds []*entity.WorldBuilding
	err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&worlds).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list world buildings: %w", err)
	}

	return repository.NewPagedResult(worlds, total, pagination), nil
}
