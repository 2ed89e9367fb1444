// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"agent-writer-api/internal/domain/entity"
)

// ImprovementRepository 迭代改进会话仓储接口
type ImprovementRepository interface {
	// Save 持久化会话及其全部迭代记录
	Save(ctx context.Context, session *entity.ImprovementSession) error
	GetByID(ctx context.Context, id string) (*entity.ImprovementSession, error)
}
