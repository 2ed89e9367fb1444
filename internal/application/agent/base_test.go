package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/domain/entity"
	wfmodel "agent-writer-api/internal/workflow/model"
	pkgerrors "agent-writer-api/pkg/errors"
)

func TestBuildGenerationVars(t *testing.T) {
	req := &GenerateRequest{
		Request: &param.Request{Content: "  Create a plot  "},
		Params:  param.ParameterSet{Genre: "fantasy", Tone: "dark"},
		Upstream: map[Kind]*Result{
			KindPlot: {
				Kind:    KindPlot,
				Success: true,
				Payload: &wfmodel.PlotDraft{Title: "远征", PlotSummary: "一支商队误入禁地"},
			},
		},
		ConversationBlock: "user: 之前聊过的设定",
	}

	vars := buildGenerationVars(req, []Kind{KindPlot})

	assert.Equal(t, "Create a plot", vars["user_request"])

	params, ok := vars["parameters_block"].(string)
	require.True(t, ok)
	assert.Contains(t, params, "genre")
	assert.Contains(t, params, "fantasy")

	ctxBlock, ok := vars["context_block"].(string)
	require.True(t, ok)
	assert.Contains(t, ctxBlock, "远征")
	assert.Contains(t, ctxBlock, "之前聊过的设定")
}

func TestBuildGenerationVars_SkipsFailedUpstream(t *testing.T) {
	req := &GenerateRequest{
		Request: &param.Request{Content: "anything"},
		Upstream: map[Kind]*Result{
			KindPlot: {Kind: KindPlot, Success: false, Error: "degenerate"},
		},
	}

	vars := buildGenerationVars(req, []Kind{KindPlot, KindWorldBuilding})

	ctxBlock, ok := vars["context_block"].(string)
	require.True(t, ok)
	assert.NotContains(t, ctxBlock, "degenerate")
}

func TestQualityVars(t *testing.T) {
	req := &GenerateRequest{
		Input: map[string]string{
			"content":      "一段待打分的文本",
			"content_type": "plot",
		},
	}

	vars, err := qualityVars(req, "content", "content_type")
	require.NoError(t, err)
	assert.Equal(t, "一段待打分的文本", vars["content"])

	_, err = qualityVars(req, "content", "critique_block")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critique_block")
}

func TestKindContentType(t *testing.T) {
	assert.Equal(t, entity.ContentTypePlot, KindPlot.ContentType())
	assert.Equal(t, entity.ContentTypeAuthor, KindAuthor.ContentType())
	assert.Equal(t, entity.ContentTypeWorld, KindWorldBuilding.ContentType())
	assert.Equal(t, entity.ContentTypeCharacters, KindCharacters.ContentType())
	// 质量控制类代理不产出内容
	assert.Empty(t, KindCritique.ContentType())
	assert.Empty(t, KindScoring.ContentType())
	// 补充设定回写既有世界观，不新建内容记录
	assert.Empty(t, KindLoreExpansion.ContentType())
}

func TestLoreExpansionAgent(t *testing.T) {
	r := NewRegistry(NewLoreExpansionAgent(nil, Options{}))

	ag, err := r.Get(KindLoreExpansion)
	require.NoError(t, err)
	assert.Equal(t, KindLoreExpansion, ag.Kind())

	// 链未配置属不可恢复故障
	_, err = ag.Generate(context.Background(), &GenerateRequest{
		Request: &param.Request{Content: "expand the lore"},
	})
	assert.Error(t, err)
}

func TestRegistry_GetUnknownAgent(t *testing.T) {
	r := NewRegistry(NewPlotAgent(nil, Options{}))

	_, err := r.Get(KindPlot)
	assert.NoError(t, err)

	_, err = r.Get(KindScoring)
	require.Error(t, err)
	var appErr *pkgerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnknownAgent, appErr.Code)
}
