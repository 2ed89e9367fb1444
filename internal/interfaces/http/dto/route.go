package dto

import (
	"github.com/google/uuid"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/orchestration"
	"agent-writer-api/internal/application/param"
)

// AudienceDTO 目标受众
type AudienceDTO struct {
	AgeGroup    string `json:"age_group,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// ContentRefDTO 既有内容引用
type ContentRefDTO struct {
	ID   string `json:"id" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// RequestContextDTO 调用方预选参数
type RequestContextDTO struct {
	Genre      string         `json:"genre,omitempty"`
	Subgenre   string         `json:"subgenre,omitempty"`
	Microgenre string         `json:"microgenre,omitempty"`
	Trope      string         `json:"trope,omitempty"`
	Tone       string         `json:"tone,omitempty"`
	Audience   *AudienceDTO   `json:"audience,omitempty"`
	ContentRef *ContentRefDTO `json:"content_ref,omitempty"`
}

// RouteRequest 聊天路由请求
type RouteRequest struct {
	Content   string             `json:"content" binding:"required"`
	UserID    string             `json:"user_id" binding:"required"`
	SessionID string             `json:"session_id" binding:"required"`
	Context   *RequestContextDTO `json:"context,omitempty"`
	Fallback  *RequestContextDTO `json:"fallback,omitempty"`
	Provider  string             `json:"provider,omitempty"`
}

// ToRequest 转换为应用层请求，请求 ID 由传输层生成
func (r *RouteRequest) ToRequest() *param.Request {
	return &param.Request{
		RequestID: uuid.New().String(),
		Content:   r.Content,
		UserID:    r.UserID,
		SessionID: r.SessionID,
		Context:   toRequestContext(r.Context),
		Fallback:  toRequestContext(r.Fallback),
		Provider:  r.Provider,
	}
}

func toRequestContext(d *RequestContextDTO) *param.RequestContext {
	if d == nil {
		return nil
	}
	out := &param.RequestContext{
		Genre:      d.Genre,
		Subgenre:   d.Subgenre,
		Microgenre: d.Microgenre,
		Trope:      d.Trope,
		Tone:       d.Tone,
	}
	if d.Audience != nil {
		out.Audience = &param.Audience{
			AgeGroup:    d.Audience.AgeGroup,
			Gender:      d.Audience.Gender,
			Orientation: d.Audience.Orientation,
		}
	}
	if d.ContentRef != nil {
		out.ContentRef = &param.ContentRef{ID: d.ContentRef.ID, Type: d.ContentRef.Type}
	}
	return out
}

// StepResultDTO 单步执行结果
type StepResultDTO struct {
	Agent      string `json:"agent"`
	Success    bool   `json:"success"`
	RecordID   string `json:"record_id,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Payload    any    `json:"payload,omitempty"`
}

// RouteResponse 聊天路由响应
type RouteResponse struct {
	RequestID     string           `json:"request_id"`
	WorkflowType  string           `json:"workflow_type"`
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Clarification string           `json:"clarification,omitempty"`
	Steps         []*StepResultDTO `json:"steps,omitempty"`
	ImprovementID string           `json:"improvement_id,omitempty"`
}

// FromWorkflowResult 从编排结果构建响应
func FromWorkflowResult(result *orchestration.WorkflowResult) *RouteResponse {
	resp := &RouteResponse{
		RequestID:     result.RequestID,
		WorkflowType:  string(result.WorkflowType),
		Success:       result.Success,
		Message:       result.Message,
		Clarification: result.Clarification,
		Steps:         toStepDTOs(result.Steps),
	}
	if result.Improvement != nil {
		resp.ImprovementID = result.Improvement.ID
	}
	return resp
}

func toStepDTOs(steps []*agent.Result) []*StepResultDTO {
	if len(steps) == 0 {
		return nil
	}
	out := make([]*StepResultDTO, 0, len(steps))
	for _, s := range steps {
		out = append(out, &StepResultDTO{
			Agent:      string(s.Kind),
			Success:    s.Success,
			RecordID:   s.RecordID,
			Error:      s.Error,
			DurationMs: s.Duration.Milliseconds(),
			Payload:    s.Payload,
		})
	}
	return out
}
