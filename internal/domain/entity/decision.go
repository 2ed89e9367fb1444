// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DecisionRecord 路由决策记录
// 面向分析的只写日志：编排核心每个请求创建一条，创建后不可变，
// 由独立的 analytics-worker 异步落库，正常链路从不读回。
type DecisionRecord struct {
	ID              string          `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID       string          `json:"request_id" gorm:"type:uuid;index;not null"`
	UserID          string          `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SessionID       string          `json:"session_id" gorm:"type:varchar(64);index;not null"`
	WorkflowType    string          `json:"workflow_type" gorm:"type:varchar(64);not null"`
	AgentSequence   json.RawMessage `json:"agent_sequence" gorm:"type:jsonb"`
	ExtractedParams json.RawMessage `json:"extracted_params,omitempty" gorm:"type:jsonb"`
	StepTimings     json.RawMessage `json:"step_timings,omitempty" gorm:"type:jsonb"`
	Success         bool            `json:"success" gorm:"not null"`
	Error           string          `json:"error,omitempty" gorm:"type:text"`
	LatencyMs       int64           `json:"latency_ms" gorm:"not null;default:0"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (DecisionRecord) TableName() string {
	return "decision_records"
}

// NewDecisionRecord 创建决策记录
func NewDecisionRecord(requestID, userID, sessionID, workflowType string) *DecisionRecord {
	return &DecisionRecord{
		ID:           uuid.New().String(),
		RequestID:    requestID,
		UserID:       userID,
		SessionID:    sessionID,
		WorkflowType: workflowType,
		CreatedAt:    time.Now(),
	}
}
