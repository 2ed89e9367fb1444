package node

import (
	"fmt"
	"sort"
	"strings"
)

// BuildKeyValueBlock 将键值上下文渲染为提示词可读的区块，键按字典序稳定输出。
func BuildKeyValueBlock(title string, kv map[string]string) string {
	if len(kv) == 0 {
		return ""
	}

	keys := make([]string, 0, len(kv))
	for k, v := range kv {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	if title != "" {
		lines = append(lines, title+"：")
	}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", k, strings.TrimSpace(kv[k])))
	}
	return strings.Join(lines, "\n")
}

// BuildSectionBlock 将命名文本片段拼装为区块，用于上游结果与会话历史注入。
func BuildSectionBlock(title string, sections []Section) string {
	if len(sections) == 0 {
		return ""
	}

	lines := make([]string, 0, len(sections)+1)
	if title != "" {
		lines = append(lines, title+"：")
	}
	for _, s := range sections {
		content := strings.TrimSpace(s.Content)
		if content == "" {
			continue
		}
		name := strings.TrimSpace(s.Name)
		if name == "" {
			lines = append(lines, content)
			continue
		}
		lines = append(lines, "["+name+"]\n"+content)
	}
	if len(lines) <= 1 {
		return ""
	}
	return strings.Join(lines, "\n\n")
}

// Section 提示词区块中的一个命名片段
type Section struct {
	Name    string
	Content string
}
