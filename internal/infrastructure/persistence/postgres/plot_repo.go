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

// plotRepository 情节仓储实现
type plotRepository struct {
	client *Client
}

// NewPlotRepository 创建情节仓储
func NewPlotRepository(client *Client) repository.PlotRepository {
	return &plotRepository{client: client}
}

// Create 创建情节
func (r *plotRepository) Create(ctx context.Context, plot *entity.Plot) error {
	ctx, span := tracer.Start(ctx, "PlotRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("plot.id", plot.ID))

	if err := getDB(ctx, r.client.db).Create(plot).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create plot: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取情节
func (r *plotRepository) GetByID(ctx context.Context, id string) (*entity.Plot, error) {
	ctx, span := tracer.Start(ctx, "PlotRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("plot.id", id))

	var plot entity.Plot
	err := getDB(ctx, r.client.db).Where("id = ?", id).First(&plot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}
	return &plot, nil
}

// ListByUser 分页查询用户的情节
func (r *plotRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Plot], error) {
	ctx, span := tracer.Start(ctx, "PlotRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	db := getDB(ctx, r.client.db).Model(&entity.Plot{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count plots: %w", err)
	}

	var plots []*entity.Plot
	err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&plots).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list plots: %w", err)
	}

	return repository.NewPagedResult(plots, total, pagination), nil
}
