// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ImprovementStatus 迭代改进会话状态
type ImprovementStatus string

const (
	ImprovementStatusInProgress      ImprovementStatus = "in_progress"
	ImprovementStatusCompletedScore  ImprovementStatus = "completed_by_score"
	ImprovementStatusCompletedMaxIte ImprovementStatus = "completed_by_max_iterations"
	ImprovementStatusFailed          ImprovementStatus = "failed"
)

// Terminal 状态是否为终态
func (s ImprovementStatus) Terminal() bool {
	return s != ImprovementStatusInProgress
}

// ImprovementSession 迭代改进会话
// 记录 critique -> enhance -> score 循环的完整审计轨迹，迭代记录仅追加。
type ImprovementSession struct {
	ID              string            `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          string            `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID       string            `json:"session_id" gorm:"type:varchar(64);index;not null"`
	ContentType     ContentType       `json:"content_type" gorm:"type:varchar(32);not null"`
	OriginalContent string            `json:"original_content" gorm:"type:text;not null"`
	FinalContent    string            `json:"final_content" gorm:"type:text"`
	TargetScore     float64           `json:"target_score" gorm:"not null"`
	MaxIterations   int               `json:"max_iterations" gorm:"not null"`
	IterationCount  int               `json:"iteration_count" gorm:"not null;default:0"`
	Status          ImprovementStatus `json:"status" gorm:"type:varchar(32);not null;default:'in_progress'"`
	Iterations      []*Iteration      `json:"iterations,omitempty" gorm:"foreignKey:ImprovementSessionID"`
	CreatedAt       time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ImprovementSession) TableName() string {
	return "improvement_sessions"
}

// NewImprovementSession 创建迭代改进会话
func NewImprovementSession(userID, sessionID string, contentType ContentType, content string, targetScore float64, maxIterations int) *ImprovementSession {
	now := time.Now()
	return &ImprovementSession{
		ID:              uuid.New().String(),
		UserID:          userID,
		SessionID:       sessionID,
		ContentType:     contentType,
		OriginalContent: content,
		TargetScore:     targetScore,
		MaxIterations:   maxIterations,
		Status:          ImprovementStatusInProgress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AppendIteration 追加一轮迭代记录
func (s *ImprovementSession) AppendIteration(it *Iteration) {
	it.ImprovementSessionID = s.ID
	it.Number = len(s.Iterations) + 1
	s.Iterations = append(s.Iterations, it)
	s.IterationCount = len(s.Iterations)
	s.FinalContent = it.EnhancedContent
	s.UpdatedAt = time.Now()
}

// Complete 以终态结束会话
func (s *ImprovementSession) Complete(status ImprovementStatus) {
	s.Status = status
	s.UpdatedAt = time.Now()
}

// LastScore 最近一轮迭代的得分，无迭代时返回 0
func (s *ImprovementSession) LastScore() float64 {
	if len(s.Iterations) == 0 {
		return 0
	}
	return s.Iterations[len(s.Iterations)-1].Score
}

// Iteration 单轮迭代记录
type Iteration struct {
	ID                   string          `json:"id" gorm:"type:uuid;primaryKey"`
	ImprovementSessionID string          `json:"improvement_session_id" gorm:"type:uuid;index;not null"`
	Number               int             `json:"number" gorm:"not null"`
	InputContent         string          `json:"input_content" gorm:"type:text;not null"`
	Critique             json.RawMessage `json:"critique" gorm:"type:jsonb"`
	EnhancedContent      string          `json:"enhanced_content" gorm:"type:text;not null"`
	EnhancementRationale string          `json:"enhancement_rationale,omitempty" gorm:"type:text"`
	Score                float64         `json:"score" gorm:"not null"`
	ScoreBreakdown       json.RawMessage `json:"score_breakdown,omitempty" gorm:"type:jsonb"`
	CreatedAt            time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Iteration) TableName() string {
	return "improvement_iterations"
}

// NewIteration 创建迭代记录
func NewIteration(input string) *Iteration {
	return &Iteration{
		ID:           uuid.New().String(),
		InputContent: input,
		CreatedAt:    time.Now(),
	}
}
