package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "纯 JSON 对象",
			in:   `{"title":"起风","plot_summary":"少年离乡"}`,
			want: `{"title":"起风","plot_summary":"少年离乡"}`,
		},
		{
			name: "前后夹杂说明文字",
			in:   "好的，以下是结果：\n{\"score\": 8.5}\n希望对你有帮助。",
			want: `{"score": 8.5}`,
		},
		{
			name: "markdown 代码块包裹",
			in:   "```json\n{\"genre\": \"fantasy\"}\n```",
			want: `{"genre": "fantasy"}`,
		},
		{
			name: "无语言标记的代码块",
			in:   "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "JSON 数组",
			in:   "候选如下 [\"a\", \"b\"] 共两项",
			want: `["a", "b"]`,
		},
		{
			name: "字符串字面量内的括号不干扰深度",
			in:   `{"note": "包含 } 和 {", "ok": true}`,
			want: `{"note": "包含 } 和 {", "ok": true}`,
		},
		{
			name: "嵌套对象取外层",
			in:   `{"outer": {"inner": 1}} 尾注`,
			want: `{"outer": {"inner": 1}}`,
		},
		{
			name: "括号未闭合时原样返回",
			in:   `{"broken": `,
			want: `{"broken":`,
		},
		{
			name: "无 JSON 内容原样返回",
			in:   "   抱歉，我无法生成。  ",
			want: "抱歉，我无法生成。",
		},
		{
			name: "空输入",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "", TruncateByRunes("abc", -1))
	assert.Equal(t, "abc", TruncateByRunes("abc", 3))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "ab", TruncateByRunes("abc", 2))

	// 多字节字符按 rune 计数，不会截出半个字符
	assert.Equal(t, "少年离", TruncateByRunes("少年离乡记", 3))
	assert.Equal(t, "少年离乡记", TruncateByRunes("少年离乡记", 5))
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	assert.False(t, IsResponseFormatUnsupportedError(nil))
	assert.False(t, IsResponseFormatUnsupportedError(errors.New("context deadline exceeded")))

	assert.True(t, IsResponseFormatUnsupportedError(errors.New("Unknown parameter: 'response_format'")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("json_schema is not supported by this model")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("invalid value for response field")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("failed to parse structured output")))
}

func TestBuildKeyValueBlock(t *testing.T) {
	assert.Empty(t, BuildKeyValueBlock("创作参数", nil))
	assert.Empty(t, BuildKeyValueBlock("创作参数", map[string]string{"genre": "  "}))

	got := BuildKeyValueBlock("创作参数", map[string]string{
		"tone":  "灰暗",
		"genre": "fantasy",
		"empty": "",
	})
	assert.Equal(t, "创作参数：\n- genre: fantasy\n- tone: 灰暗", got)

	// 无标题时只输出条目
	assert.Equal(t, "- genre: fantasy", BuildKeyValueBlock("", map[string]string{"genre": "fantasy"}))
}

func TestBuildSectionBlock(t *testing.T) {
	assert.Empty(t, BuildSectionBlock("上游产物", nil))
	assert.Empty(t, BuildSectionBlock("上游产物", []Section{{Name: "剧情", Content: "  "}}))

	got := BuildSectionBlock("上游产物", []Section{
		{Name: "剧情", Content: "少年离乡。"},
		{Name: "", Content: "无名片段"},
		{Name: "世界观", Content: ""},
	})
	assert.Equal(t, "上游产物：\n\n[剧情]\n少年离乡。\n\n无名片段", got)
}
