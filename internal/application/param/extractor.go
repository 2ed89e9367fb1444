package param

import "strings"

// 触发短语：文本中出现任意一个时，视为用户引用了调用方提供的候选参数。
var fallbackTriggers = []string{
	"specified genre",
	"selected parameters",
	"selected genre",
	"chosen parameters",
	"chosen genre",
	"my parameters",
	"these parameters",
}

// Extractor 参数抽取器。
// 显式上下文逐字优先；否则按触发短语决定是否合入候选参数；都没有时返回空参数集。
// 任何输入都不会导致错误：缺失字段保持缺省，由下游各自容忍。
type Extractor struct{}

// NewExtractor 创建参数抽取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 从请求中抽取参数集
func (e *Extractor) Extract(req *Request) ParameterSet {
	if req == nil {
		return ParameterSet{}
	}

	if !req.Context.Empty() {
		return fromContext(req.Context)
	}

	if !req.Fallback.Empty() && hasFallbackTrigger(req.Content) {
		return fromContext(req.Fallback)
	}

	return ParameterSet{}
}

func hasFallbackTrigger(content string) bool {
	text := strings.ToLower(content)
	for _, trigger := range fallbackTriggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}

func fromContext(c *RequestContext) ParameterSet {
	if c == nil {
		return ParameterSet{}
	}

	params := ParameterSet{
		Genre:      strings.TrimSpace(c.Genre),
		Subgenre:   strings.TrimSpace(c.Subgenre),
		Microgenre: strings.TrimSpace(c.Microgenre),
		Trope:      strings.TrimSpace(c.Trope),
		Tone:       strings.TrimSpace(c.Tone),
	}
	if c.Audience != nil {
		params.Audience = Audience{
			AgeGroup:    strings.TrimSpace(c.Audience.AgeGroup),
			Gender:      strings.TrimSpace(c.Audience.Gender),
			Orientation: strings.TrimSpace(c.Audience.Orientation),
		}
	}
	if c.ContentRef != nil && strings.TrimSpace(c.ContentRef.ID) != "" {
		params.ContentRef = &ContentRef{
			ID:   strings.TrimSpace(c.ContentRef.ID),
			Type: strings.TrimSpace(c.ContentRef.Type),
		}
	}
	return params
}
