// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorldType 世界观类型
type WorldType string

const (
	WorldTypeHighFantasy       WorldType = "high_fantasy"
	WorldTypeUrbanFantasy      WorldType = "urban_fantasy"
	WorldTypeScienceFiction    WorldType = "science_fiction"
	WorldTypeHistoricalFiction WorldType = "historical_fiction"
	WorldTypeContemporary      WorldType = "contemporary"
	WorldTypeDystopian         WorldType = "dystopian"
	WorldTypeOther             WorldType = "other"
)

// ValidWorldType 检查世界观类型是否合法
func ValidWorldType(t WorldType) bool {
	switch t {
	case WorldTypeHighFantasy, WorldTypeUrbanFantasy, WorldTypeScienceFiction,
		WorldTypeHistoricalFiction, WorldTypeContemporary, WorldTypeDystopian, WorldTypeOther:
		return true
	default:
		return false
	}
}

// WorldBuilding 世界观实体
// 九个子板块均为可选，但以结构化 JSON 存储而非自由文本。
type WorldBuilding struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);index;not null"`
	PlotID    string    `json:"plot_id" gorm:"type:uuid;index;not null"`
	WorldName string    `json:"world_name" gorm:"type:varchar(255);not null"`
	WorldType WorldType `json:"world_type" gorm:"type:varchar(32);not null"`
	Overview  string    `json:"overview" gorm:"type:text;not null"`

	Geography      json.RawMessage `json:"geography,omitempty" gorm:"type:jsonb"`
	Politics       json.RawMessage `json:"politics,omitempty" gorm:"type:jsonb"`
	Culture        json.RawMessage `json:"culture,omitempty" gorm:"type:jsonb"`
	Economics      json.RawMessage `json:"economics,omitempty" gorm:"type:jsonb"`
	History        json.RawMessage `json:"history,omitempty" gorm:"type:jsonb"`
	PowerSystems   json.RawMessage `json:"power_systems,omitempty" gorm:"type:jsonb"`
	Languages      json.RawMessage `json:"languages,omitempty" gorm:"type:jsonb"`
	Religions      json.RawMessage `json:"religions,omitempty" gorm:"type:jsonb"`
	UniqueElements json.RawMessage `json:"unique_elements,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (WorldBuilding) TableName() string {
	return "world_buildings"
}

// NewWorldBuilding 创建世界观实体
func NewWorldBuilding(userID, sessionID, plotID, name string, worldType WorldType, overview string) *WorldBuilding {
	now := time.Now()
	if !ValidWorldType(worldType) {
		worldType = WorldTypeOther
	}
	return &WorldBuilding{
		ID:        uuid.New().String(),
		UserID:    userID,
		SessionID: sessionID,
		PlotID:    plotID,
		WorldName: name,
		WorldType: worldType,
		Overview:  overview,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
