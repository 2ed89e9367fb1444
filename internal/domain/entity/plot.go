// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Plot 情节实体
type Plot struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string          `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID   string          `json:"session_id" gorm:"type:varchar(64);index;not null"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	PlotSummary string          `json:"plot_summary" gorm:"type:text;not null"`
	Genre       string          `json:"genre,omitempty" gorm:"type:varchar(64)"`
	Subgenre    string          `json:"subgenre,omitempty" gorm:"type:varchar(64)"`
	Microgenre  string          `json:"microgenre,omitempty" gorm:"type:varchar(64)"`
	Trope       string          `json:"trope,omitempty" gorm:"type:varchar(128)"`
	Tone        string          `json:"tone,omitempty" gorm:"type:varchar(64)"`
	Audience    json.RawMessage `json:"audience,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Plot) TableName() string {
	return "plots"
}

// NewPlot 创建情节实体
func NewPlot(userID, sessionID, title, summary string) *Plot {
	now := time.Now()
	return &Plot{
		ID:          uuid.New().String(),
		UserID:      userID,
		SessionID:   sessionID,
		Title:       title,
		PlotSummary: summary,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
