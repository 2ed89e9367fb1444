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

// sessionRepository 会话仓储实现
type sessionRepository struct {
	client *Client
}

// NewSessionRepository 创建会话仓储
func NewSessionRepository(client *Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

// GetOrCreate 按 (sessionID, userID) 获取会话，不存在时创建。
// 并发首次创建依赖唯一索引，冲突时回读已存在的行。
func (r *sessionRepository) GetOrCreate(ctx context.Context, sessionID, userID string) (*entity.ConversationSession, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.GetOrCreate")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("user.id", userID),
	)

	var session entity.ConversationSession
	err := getDB(ctx, r.client.db).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	created := entity.NewConversationSession(sessionID, userID)
	err = getDB(ctx, r.client.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(created).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// 冲突时 DoNothing 不回填，再读一次保证拿到持久化的行
	err = getDB(ctx, r.client.db).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	return &session, nil
}

// UpdateRefs 覆盖写入会话内容引用（last-writer-wins）
func (r *sessionRepository) UpdateRefs(ctx context.Context, session *entity.ConversationSession) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.UpdateRefs")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", session.SessionID))

	err := getDB(ctx, r.client.db).
		Model(&entity.ConversationSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]any{
			"content_refs": session.ContentRefs,
			"updated_at":   session.UpdatedAt,
		}).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update session refs: %w", err)
	}
	return nil
}

// interactionRepository 交互记录仓储实现
type interactionRepository struct {
	client *Client
}

// NewInteractionRepository 创建交互记录仓储
func NewInteractionRepository(client *Client) repository.InteractionRepository {
	return &interactionRepository{client: client}
}

// Append 追加交互记录
func (r *interactionRepository) Append(ctx context.Context, interaction *entity.Interaction) error {
	ctx, span := tracer.Start(ctx, "InteractionRepository.Append")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", interaction.SessionID),
		attribute.String("interaction.role", string(interaction.Role)),
	)

	if err := getDB(ctx, r.client.db).Create(interaction).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}

// ListRecent 按时间倒序取最近 limit 条交互
func (r *interactionRepository) ListRecent(ctx context.Context, sessionID, userID string, limit int) ([]*entity.Interaction, error) {
	ctx, span := tracer.Start(ctx, "InteractionRepository.ListRecent")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("limit", limit),
	)

	var interactions []*entity.Interaction
	err := getDB(ctx, r.client.db).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return interactions, nil
}
