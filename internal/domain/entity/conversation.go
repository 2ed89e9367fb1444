// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType 生成内容类型
type ContentType string

const (
	ContentTypePlot       ContentType = "plot"
	ContentTypeAuthor     ContentType = "author"
	ContentTypeWorld      ContentType = "world_building"
	ContentTypeCharacters ContentType = "characters"
)

// ContentRefs 会话累积的已生成内容引用，按类型保留最新一条（last-writer-wins）。
type ContentRefs map[ContentType]string

// ConversationSession 会话实体
// 每个 (user, session) 对应一行；ContentRefs 以 jsonb 整体覆盖写入。
type ConversationSession struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID   string          `json:"session_id" gorm:"type:varchar(64);uniqueIndex:idx_session_user;not null"`
	UserID      string          `json:"user_id" gorm:"type:varchar(64);uniqueIndex:idx_session_user;not null"`
	ContentRefs json.RawMessage `json:"content_refs" gorm:"type:jsonb;not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ConversationSession) TableName() string {
	return "conversation_sessions"
}

// NewConversationSession 创建会话实体
func NewConversationSession(sessionID, userID string) *ConversationSession {
	now := time.Now()
	return &ConversationSession{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		UserID:      userID,
		ContentRefs: json.RawMessage("{}"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Refs 解析内容引用
func (s *ConversationSession) Refs() ContentRefs {
	refs := make(ContentRefs)
	if len(s.ContentRefs) > 0 {
		_ = json.Unmarshal(s.ContentRefs, &refs)
	}
	return refs
}

// SetRefs 覆盖写入内容引用
func (s *ConversationSession) SetRefs(refs ContentRefs) {
	data, err := json.Marshal(refs)
	if err != nil {
		return
	}
	s.ContentRefs = data
	s.UpdatedAt = time.Now()
}

// Interaction 会话交互记录，仅追加
type Interaction struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID string          `json:"session_id" gorm:"type:varchar(64);index;not null"`
	UserID    string          `json:"user_id" gorm:"type:varchar(64);index;not null"`
	Role      Role            `json:"role" gorm:"type:varchar(16);not null"`
	Content   string          `json:"content" gorm:"type:text;not null"`
	Metadata  json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Interaction) TableName() string {
	return "interactions"
}

// NewInteraction 创建交互记录
func NewInteraction(sessionID, userID string, role Role, content string, metadata json.RawMessage) *Interaction {
	return &Interaction{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}
