package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject 从模型输出中提取第一个完整的 JSON 对象或数组。
// 模型经常在 JSON 前后附加说明文字，或把 JSON 包在 markdown 代码块里，
// 这里按括号深度扫描截取，字符串字面量内的括号不计入深度。
func ExtractJSONObject(s string) string {
	raw := stripCodeFence(strings.TrimSpace(s))
	if raw == "" {
		return raw
	}

	candidate := scanJSONValue(raw)
	if candidate == "" {
		return strings.TrimSpace(s)
	}
	if !json.Valid([]byte(candidate)) {
		return strings.TrimSpace(s)
	}
	return candidate
}

// stripCodeFence 去掉 ```json ... ``` 形式的代码块包裹。
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// 首行可能是语言标记，如 "json"
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// scanJSONValue 返回 raw 中第一个按深度闭合的对象/数组片段，找不到返回空串。
func scanJSONValue(raw string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' || raw[i] == '[' {
			start = i
			open = raw[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
