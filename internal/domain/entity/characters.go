// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CharacterCast 人物组实体
// 一次人物生成产出一组人物及其关系网络。
type CharacterCast struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         string          `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID      string          `json:"session_id" gorm:"type:varchar(64);index;not null"`
	PlotID         string          `json:"plot_id" gorm:"type:uuid;index;not null"`
	WorldID        string          `json:"world_id" gorm:"type:uuid;index;not null"`
	CharacterCount int             `json:"character_count" gorm:"not null;default:0"`
	Characters     json.RawMessage `json:"characters" gorm:"type:jsonb;not null"`
	Relationships  json.RawMessage `json:"relationships,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CharacterCast) TableName() string {
	return "character_casts"
}

// NewCharacterCast 创建人物组实体
func NewCharacterCast(userID, sessionID, plotID, worldID string, count int, characters, relationships json.RawMessage) *CharacterCast {
	now := time.Now()
	if characters == nil {
		characters = json.RawMessage("[]")
	}
	return &CharacterCast{
		ID:             uuid.New().String(),
		UserID:         userID,
		SessionID:      sessionID,
		PlotID:         plotID,
		WorldID:        worldID,
		CharacterCount: count,
		Characters:     characters,
		Relationships:  relationships,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
