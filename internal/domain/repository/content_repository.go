// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"agent-writer-api/internal/domain/entity"
)

// PlotRepository 情节仓储接口
type PlotRepository interface {
	Create(ctx context.Context, plot *entity.Plot) error
	GetByID(ctx context.Context, id string) (*entity.Plot, error)
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Plot], error)
}

// AuthorRepository 作者仓储接口
type AuthorRepository interface {
	Create(ctx context.Context, author *entity.Author) error
	GetByID(ctx context.Context, id string) (*entity.Author, error)
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Author], error)
}

// WorldRepository 世界观仓储接口
type WorldRepository interface {
	Create(ctx context.Context, world *entity.WorldBuilding) error
	// Update 整体保存世界观，供补充设定并入后回写
	Update(ctx context.Context, world *entity.WorldBuilding) error
	GetByID(ctx context.Context, id string) (*entity.WorldBuilding, error)
	GetByPlotID(ctx context.Context, plotID string) (*entity.WorldBuilding, error)
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.WorldBuilding], error)
}

// CharactersRepository 人物组仓储接口
type CharactersRepository interface {
	Create(ctx context.Context, cast *entity.CharacterCast) error
	GetByID(ctx context.Context, id string) (*entity.CharacterCast, error)
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.CharacterCast], error)
}
