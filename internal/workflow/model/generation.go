// Package model 定义工作流层的输入输出模型
package model

// GenerateInput 内容生成链的统一输入
type GenerateInput struct {
	// Provider 指定 LLM 提供商，空值使用默认提供商
	Provider string
	// Model 覆盖提供商默认模型，空值不覆盖
	Model string
	// Temperature 覆盖采样温度
	Temperature *float32
	// MaxTokens 覆盖最大生成 token 数
	MaxTokens *int
	// Vars 提示词模板变量
	Vars map[string]any
}

// CharacterDescriptor 单个角色描述
type CharacterDescriptor struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
	Personality string `json:"personality,omitempty"`
	Backstory   string `json:"backstory,omitempty"`
}

// CharacterRelationship 角色关系
type CharacterRelationship struct {
	From        string `json:"from" validate:"required"`
	To          string `json:"to" validate:"required"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// PlotDraft 情节生成结果
type PlotDraft struct {
	Title       string            `json:"title" validate:"required"`
	PlotSummary string            `json:"plot_summary" validate:"required"`
	Genre       string            `json:"genre,omitempty"`
	Subgenre    string            `json:"subgenre,omitempty"`
	Microgenre  string            `json:"microgenre,omitempty"`
	Trope       string            `json:"trope,omitempty"`
	Tone        string            `json:"tone,omitempty"`
	Audience    map[string]string `json:"audience,omitempty"`
}

// AuthorDraft 作者人格生成结果
type AuthorDraft struct {
	AuthorName   string `json:"author_name" validate:"required"`
	PenName      string `json:"pen_name,omitempty"`
	Biography    string `json:"biography" validate:"required"`
	WritingStyle string `json:"writing_style" validate:"required"`
}

// WorldDraft 世界观生成结果
type WorldDraft struct {
	WorldName string `json:"world_name" validate:"required"`
	WorldType string `json:"world_type" validate:"required"`
	Overview  string `json:"overview" validate:"required"`

	Geography      map[string]any `json:"geography,omitempty"`
	Politics       map[string]any `json:"politics,omitempty"`
	Culture        map[string]any `json:"culture,omitempty"`
	Economics      map[string]any `json:"economics,omitempty"`
	History        map[string]any `json:"history,omitempty"`
	PowerSystems   map[string]any `json:"power_systems,omitempty"`
	Languages      map[string]any `json:"languages,omitempty"`
	Religions      map[string]any `json:"religions,omitempty"`
	UniqueElements map[string]any `json:"unique_elements,omitempty"`
}

// CharactersDraft 角色组生成结果
type CharactersDraft struct {
	CharacterCount int                     `json:"character_count" validate:"gte=0"`
	Characters     []CharacterDescriptor   `json:"characters" validate:"required,min=1,dive"`
	Relationships  []CharacterRelationship `json:"relationships,omitempty" validate:"omitempty,dive"`
}

// LoreDraft 世界观补充设定生成结果
type LoreDraft struct {
	Entries []LoreEntry `json:"entries" validate:"required,min=1,dive"`
}

// LoreEntry 单条补充设定
type LoreEntry struct {
	Topic   string `json:"topic" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CritiqueOutput 评审结果
type CritiqueOutput struct {
	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Summary     string   `json:"summary" validate:"required"`
}

// EnhanceOutput 增强结果
type EnhanceOutput struct {
	EnhancedContent string `json:"enhanced_content" validate:"required"`
	Rationale       string `json:"rationale,omitempty"`
}

// ScoreOutput 打分结果
type ScoreOutput struct {
	OverallScore float64            `json:"overall_score" validate:"gte=0,lte=10"`
	Breakdown    map[string]float64 `json:"breakdown,omitempty"`
}
