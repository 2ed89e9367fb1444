// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"agent-writer-api/internal/domain/entity"
)

// SessionRepository 会话仓储接口
type SessionRepository interface {
	// GetOrCreate 按 (sessionID, userID) 获取会话，不存在时创建
	GetOrCreate(ctx context.Context, sessionID, userID string) (*entity.ConversationSession, error)
	// UpdateRefs 覆盖写入会话内容引用（last-writer-wins）
	UpdateRefs(ctx context.Context, session *entity.ConversationSession) error
}

// InteractionRepository 交互记录仓储接口（仅追加）
type InteractionRepository interface {
	Append(ctx context.Context, interaction *entity.Interaction) error
	// ListRecent 按时间倒序取最近 limit 条交互
	ListRecent(ctx context.Context, sessionID, userID string, limit int) ([]*entity.Interaction, error)
}
