// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"agent-writer-api/internal/domain/entity"
)

// DecisionRepository 决策记录仓储接口
// 仅由 analytics-worker 写入；编排核心正常链路不读回。
type DecisionRepository interface {
	Create(ctx context.Context, record *entity.DecisionRecord) error
}
