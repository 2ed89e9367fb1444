// Package param 定义路由请求与参数抽取
package param

// Audience 目标受众
type Audience struct {
	AgeGroup    string `json:"age_group,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// ContentRef 指向既有生成内容的引用
type ContentRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// RequestContext 调用方预选的结构化参数
type RequestContext struct {
	Genre      string      `json:"genre,omitempty"`
	Subgenre   string      `json:"subgenre,omitempty"`
	Microgenre string      `json:"microgenre,omitempty"`
	Trope      string      `json:"trope,omitempty"`
	Tone       string      `json:"tone,omitempty"`
	Audience   *Audience   `json:"audience,omitempty"`
	ContentRef *ContentRef `json:"content_ref,omitempty"`
}

// Empty 判断上下文是否不含任何结构化字段
func (c *RequestContext) Empty() bool {
	if c == nil {
		return true
	}
	if c.Genre != "" || c.Subgenre != "" || c.Microgenre != "" || c.Trope != "" || c.Tone != "" {
		return false
	}
	if c.Audience != nil && (c.Audience.AgeGroup != "" || c.Audience.Gender != "" || c.Audience.Orientation != "") {
		return false
	}
	if c.ContentRef != nil && c.ContentRef.ID != "" {
		return false
	}
	return true
}

// Request 一次路由调用的工作单元，创建后不可变
type Request struct {
	// RequestID 请求标识，由传输层生成
	RequestID string `json:"request_id"`
	// Content 用户的自然语言请求
	Content string `json:"content"`
	// UserID 用户标识
	UserID string `json:"user_id"`
	// SessionID 会话标识
	SessionID string `json:"session_id"`
	// Context 调用方显式预选的参数，优先级最高
	Context *RequestContext `json:"context,omitempty"`
	// Fallback 调用方提供的候选参数，仅在文本出现触发短语时合入
	Fallback *RequestContext `json:"fallback,omitempty"`
	// Provider 指定 LLM 提供商（可选）
	Provider string `json:"provider,omitempty"`
}

// ParameterSet 规范化的生成约束，抽取后不再变更
type ParameterSet struct {
	Genre      string      `json:"genre,omitempty"`
	Subgenre   string      `json:"subgenre,omitempty"`
	Microgenre string      `json:"microgenre,omitempty"`
	Trope      string      `json:"trope,omitempty"`
	Tone       string      `json:"tone,omitempty"`
	Audience   Audience    `json:"audience,omitempty"`
	ContentRef *ContentRef `json:"content_ref,omitempty"`
}

// IsEmpty 判断参数集是否为空
func (p ParameterSet) IsEmpty() bool {
	return p.Genre == "" && p.Subgenre == "" && p.Microgenre == "" &&
		p.Trope == "" && p.Tone == "" &&
		p.Audience.AgeGroup == "" && p.Audience.Gender == "" && p.Audience.Orientation == "" &&
		p.ContentRef == nil
}

// Fields 以键值形式返回非空字段，用于提示词区块与决策记录
func (p ParameterSet) Fields() map[string]string {
	fields := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	put("genre", p.Genre)
	put("subgenre", p.Subgenre)
	put("microgenre", p.Microgenre)
	put("trope", p.Trope)
	put("tone", p.Tone)
	put("audience.age_group", p.Audience.AgeGroup)
	put("audience.gender", p.Audience.Gender)
	put("audience.orientation", p.Audience.Orientation)
	if p.ContentRef != nil && p.ContentRef.ID != "" {
		put("content_ref", p.ContentRef.Type+":"+p.ContentRef.ID)
	}
	return fields
}
