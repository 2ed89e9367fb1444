package node

import "strings"

// 各家 OpenAI 兼容网关对结构化输出不支持时的报错措辞不统一，按关键词归类。
var responseFormatMarkers = []string{
	"response_format",
	"json_schema",
	"response_schema",
	"failed to parse",
}

// IsResponseFormatUnsupportedError 判断错误是否由模型不支持结构化输出引起，
// 命中后调用方可以降级为普通文本输出再做 JSON 提取。
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range responseFormatMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	if strings.Contains(msg, "response") &&
		(strings.Contains(msg, "unknown parameter") || strings.Contains(msg, "invalid")) {
		return true
	}
	return false
}
