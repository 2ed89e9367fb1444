package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ExplicitContextWins(t *testing.T) {
	e := NewExtractor()

	req := &Request{
		Content: "write a story with my parameters",
		Context: &RequestContext{
			Genre: "fantasy",
			Trope: "chosen one",
			Audience: &Audience{
				AgeGroup: "young adult",
			},
		},
		Fallback: &RequestContext{
			Genre: "science fiction",
		},
	}

	params := e.Extract(req)

	assert.Equal(t, "fantasy", params.Genre)
	assert.Equal(t, "chosen one", params.Trope)
	assert.Equal(t, "young adult", params.Audience.AgeGroup)
	// 显式上下文存在时，候选参数完全不参与
	assert.NotEqual(t, "science fiction", params.Genre)
}

func TestExtract_FallbackRequiresTrigger(t *testing.T) {
	e := NewExtractor()
	fallback := &RequestContext{Genre: "romance", Tone: "lighthearted"}

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"触发短语 specified genre", "Write something in my specified genre please", true},
		{"触发短语 selected parameters", "Use the selected parameters for this one", true},
		{"触发短语大小写不敏感", "USE MY SELECTED GENRE", true},
		{"无触发短语", "Write me a story about dragons", false},
		{"相近但不完整的短语", "I selected a few things earlier", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := e.Extract(&Request{Content: tt.content, Fallback: fallback})
			if tt.want {
				assert.Equal(t, "romance", params.Genre)
				assert.Equal(t, "lighthearted", params.Tone)
			} else {
				assert.True(t, params.IsEmpty())
			}
		})
	}
}

func TestExtract_EmptyInputs(t *testing.T) {
	e := NewExtractor()

	assert.True(t, e.Extract(nil).IsEmpty())
	assert.True(t, e.Extract(&Request{Content: "just a story"}).IsEmpty())

	// 空的上下文对象等同于缺失
	params := e.Extract(&Request{
		Content: "use my specified genre",
		Context: &RequestContext{},
	})
	assert.True(t, params.IsEmpty())
}

func TestExtract_TrimsWhitespace(t *testing.T) {
	e := NewExtractor()

	params := e.Extract(&Request{
		Content: "anything",
		Context: &RequestContext{
			Genre: "  fantasy  ",
			ContentRef: &ContentRef{
				ID:   " 550e8400-e29b-41d4-a716-446655440000 ",
				Type: "plot",
			},
		},
	})

	assert.Equal(t, "fantasy", params.Genre)
	require.NotNil(t, params.ContentRef)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", params.ContentRef.ID)
}

func TestParameterSet_Fields(t *testing.T) {
	params := ParameterSet{
		Genre: "fantasy",
		Tone:  "dark",
		Audience: Audience{
			AgeGroup: "adult",
		},
		ContentRef: &ContentRef{ID: "abc", Type: "plot"},
	}

	fields := params.Fields()

	assert.Equal(t, "fantasy", fields["genre"])
	assert.Equal(t, "dark", fields["tone"])
	assert.Equal(t, "adult", fields["audience.age_group"])
	assert.Equal(t, "plot:abc", fields["content_ref"])
	assert.NotContains(t, fields, "subgenre")
}
