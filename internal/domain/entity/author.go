// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Author 作者人格实体
type Author struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       string    `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID    string    `json:"session_id" gorm:"type:varchar(64);index;not null"`
	AuthorName   string    `json:"author_name" gorm:"type:varchar(255);not null"`
	PenName      string    `json:"pen_name,omitempty" gorm:"type:varchar(255)"`
	Biography    string    `json:"biography" gorm:"type:text;not null"`
	WritingStyle string    `json:"writing_style" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Author) TableName() string {
	return "authors"
}

// NewAuthor 创建作者实体
func NewAuthor(userID, sessionID, name, biography, style string) *Author {
	now := time.Now()
	return &Author{
		ID:           uuid.New().String(),
		UserID:       userID,
		SessionID:    sessionID,
		AuthorName:   name,
		Biography:    biography,
		WritingStyle: style,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
