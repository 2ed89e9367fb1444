package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	"agent-writer-api/internal/infrastructure/embedding"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// fakeEmbedder 固定维度的向量化桩
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...einoembedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

// fakeIndex 记录写入与检索调用
type fakeIndex struct {
	entries   []*repository.ContentIndexEntry
	results   []*repository.ContentSummary
	indexErr  error
	searchErr error

	lastUserID string
	lastTopK   int
	lastType   entity.ContentType
}

func (f *fakeIndex) Index(_ context.Context, entry *repository.ContentIndexEntry) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, contentType entity.ContentType, userID string, topK int) ([]*repository.ContentSummary, error) {
	f.lastType = contentType
	f.lastUserID = userID
	f.lastTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

// plotRepoStub 记录创建调用的情节仓储
type plotRepoStub struct {
	created []*entity.Plot
	err     error
}

func (s *plotRepoStub) Create(_ context.Context, plot *entity.Plot) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, plot)
	return nil
}

func (s *plotRepoStub) GetByID(_ context.Context, _ string) (*entity.Plot, error) { return nil, nil }

func (s *plotRepoStub) ListByUser(_ context.Context, _ string, _ repository.Pagination) (*repository.PagedResult[*entity.Plot], error) {
	return nil, nil
}

// worldRepoStub 世界观仓储桩
type worldRepoStub struct {
	created []*entity.WorldBuilding
	updated []*entity.WorldBuilding
	worlds  map[string]*entity.WorldBuilding
}

func (s *worldRepoStub) Create(_ context.Context, world *entity.WorldBuilding) error {
	s.created = append(s.created, world)
	return nil
}

func (s *worldRepoStub) Update(_ context.Context, world *entity.WorldBuilding) error {
	s.updated = append(s.updated, world)
	return nil
}

func (s *worldRepoStub) GetByID(_ context.Context, id string) (*entity.WorldBuilding, error) {
	return s.worlds[id], nil
}

func (s *worldRepoStub) GetByPlotID(_ context.Context, _ string) (*entity.WorldBuilding, error) {
	return nil, nil
}

func (s *worldRepoStub) ListByUser(_ context.Context, _ string, _ repository.Pagination) (*repository.PagedResult[*entity.WorldBuilding], error) {
	return nil, nil
}

func testEmbeddingService() *embedding.Service {
	return embedding.NewService(&fakeEmbedder{}, 8)
}

func TestSavePlotTool(t *testing.T) {
	repo := &plotRepoStub{}
	index := &fakeIndex{}
	tool := NewSavePlotTool(repo, testEmbeddingService(), index)

	inv := &Invocation{
		UserID:    "user-1",
		SessionID: "session-1",
		Payload: &wfmodel.PlotDraft{
			Title:       "荒漠远征",
			PlotSummary: "一支商队在荒漠里发现了被沙暴掩埋的古城",
			Genre:       "fantasy",
		},
	}

	out, err := tool.Invoke(context.Background(), inv)

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, out.ID, repo.created[0].ID)
	assert.Equal(t, "user-1", repo.created[0].UserID)
	assert.Equal(t, "fantasy", repo.created[0].Genre)

	// 摘要同步写入向量索引
	require.Len(t, index.entries, 1)
	assert.Equal(t, out.ID, index.entries[0].ID)
	assert.Equal(t, entity.ContentTypePlot, index.entries[0].ContentType)
}

func TestSavePlotTool_Validation(t *testing.T) {
	tool := NewSavePlotTool(&plotRepoStub{}, testEmbeddingService(), &fakeIndex{})

	tests := []struct {
		name    string
		payload any
	}{
		{"载荷类型不符", "not a draft"},
		{"缺摘要", &wfmodel.PlotDraft{Title: "只有标题"}},
		{"空载荷", (*wfmodel.PlotDraft)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Invoke(context.Background(), &Invocation{
				UserID: "user-1", SessionID: "session-1", Payload: tt.payload,
			})
			assert.Error(t, err)
		})
	}
}

func TestSavePlotTool_IndexFailureIsNonFatal(t *testing.T) {
	repo := &plotRepoStub{}
	index := &fakeIndex{indexErr: fmt.Errorf("milvus unavailable")}
	tool := NewSavePlotTool(repo, testEmbeddingService(), index)

	out, err := tool.Invoke(context.Background(), &Invocation{
		UserID:    "user-1",
		SessionID: "session-1",
		Payload:   &wfmodel.PlotDraft{Title: "t", PlotSummary: "s"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Len(t, repo.created, 1)
}

func TestSaveWorldTool_RequiresPlotID(t *testing.T) {
	repo := &worldRepoStub{}
	tool := NewSaveWorldTool(repo, testEmbeddingService(), &fakeIndex{})

	draft := &wfmodel.WorldDraft{
		WorldName: "双月大陆",
		WorldType: "high_fantasy",
		Overview:  "两颗卫星引发的潮汐塑造了大陆文明",
	}

	_, err := tool.Invoke(context.Background(), &Invocation{
		UserID: "user-1", SessionID: "session-1", Payload: draft,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plot_id")

	out, err := tool.Invoke(context.Background(), &Invocation{
		UserID:    "user-1",
		SessionID: "session-1",
		Payload:   draft,
		Args:      map[string]string{"plot_id": "plot-1"},
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "plot-1", repo.created[0].PlotID)
	assert.Equal(t, out.ID, repo.created[0].ID)
}

func TestSaveLoreTool_MergesIntoWorld(t *testing.T) {
	repo := &worldRepoStub{
		worlds: map[string]*entity.WorldBuilding{
			"world-1": {
				ID:             "world-1",
				WorldName:      "双月大陆",
				UniqueElements: json.RawMessage(`{"魔力潮汐":"每月涨落一次"}`),
			},
		},
	}
	tool := NewSaveLoreTool(repo)

	out, err := tool.Invoke(context.Background(), &Invocation{
		UserID:    "user-1",
		SessionID: "session-1",
		Payload: &wfmodel.LoreDraft{Entries: []wfmodel.LoreEntry{
			{Topic: "货币体系", Content: "以盐砖为通货"},
			{Topic: "魔力潮汐", Content: "受双月引力叠加驱动"},
		}},
		Args: map[string]string{"world_id": "world-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "world-1", out.ID)
	require.Len(t, repo.updated, 1)

	var section map[string]any
	require.NoError(t, json.Unmarshal(repo.updated[0].UniqueElements, &section))
	assert.Equal(t, "以盐砖为通货", section["货币体系"])
	// 同主题后写覆盖
	assert.Equal(t, "受双月引力叠加驱动", section["魔力潮汐"])
}

func TestSaveLoreTool_Validation(t *testing.T) {
	repo := &worldRepoStub{}
	tool := NewSaveLoreTool(repo)
	draft := &wfmodel.LoreDraft{Entries: []wfmodel.LoreEntry{{Topic: "t", Content: "c"}}}

	t.Run("缺 world_id", func(t *testing.T) {
		_, err := tool.Invoke(context.Background(), &Invocation{UserID: "user-1", Payload: draft})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "world_id")
	})

	t.Run("空条目", func(t *testing.T) {
		_, err := tool.Invoke(context.Background(), &Invocation{
			UserID:  "user-1",
			Payload: &wfmodel.LoreDraft{},
			Args:    map[string]string{"world_id": "world-1"},
		})
		assert.Error(t, err)
	})

	t.Run("引用的世界观不存在", func(t *testing.T) {
		_, err := tool.Invoke(context.Background(), &Invocation{
			UserID:  "user-1",
			Payload: draft,
			Args:    map[string]string{"world_id": "world-missing"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Empty(t, repo.updated)
	})
}

func TestSearchContentTool(t *testing.T) {
	index := &fakeIndex{
		results: []*repository.ContentSummary{
			{ID: "plot-1", ContentType: entity.ContentTypePlot, Title: "荒漠远征"},
		},
	}
	tool := NewSearchContentTool(testEmbeddingService(), index)

	out, err := tool.Invoke(context.Background(), &Invocation{
		UserID: "user-1",
		Args:   map[string]string{"query": "沙漠古城", "content_type": "plot", "top_k": "3"},
	})

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "plot-1", out.Results[0].ID)
	assert.Equal(t, "user-1", index.lastUserID)
	assert.Equal(t, 3, index.lastTopK)
	assert.Equal(t, entity.ContentTypePlot, index.lastType)
}

func TestSearchContentTool_Degradation(t *testing.T) {
	t.Run("缺检索词直接报错", func(t *testing.T) {
		tool := NewSearchContentTool(testEmbeddingService(), &fakeIndex{})
		_, err := tool.Invoke(context.Background(), &Invocation{UserID: "user-1"})
		assert.Error(t, err)
	})

	t.Run("嵌入失败降级为空结果", func(t *testing.T) {
		svc := embedding.NewService(&fakeEmbedder{err: fmt.Errorf("provider down")}, 8)
		tool := NewSearchContentTool(svc, &fakeIndex{})

		out, err := tool.Invoke(context.Background(), &Invocation{
			UserID: "user-1",
			Args:   map[string]string{"query": "anything"},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
	})

	t.Run("索引检索失败降级为空结果", func(t *testing.T) {
		index := &fakeIndex{searchErr: fmt.Errorf("collection not loaded")}
		tool := NewSearchContentTool(testEmbeddingService(), index)

		out, err := tool.Invoke(context.Background(), &Invocation{
			UserID: "user-1",
			Args:   map[string]string{"query": "anything"},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
	})
}

func TestSearchContentTool_RepeatedQueryReturnsSameResults(t *testing.T) {
	index := &fakeIndex{
		results: []*repository.ContentSummary{
			{ID: "plot-1", ContentType: entity.ContentTypePlot, Title: "荒漠远征"},
			{ID: "plot-2", ContentType: entity.ContentTypePlot, Title: "孤岛灯塔"},
		},
	}
	tool := NewSearchContentTool(testEmbeddingService(), index)
	inv := &Invocation{
		UserID: "user-1",
		Args:   map[string]string{"query": "沙漠古城", "content_type": "plot", "top_k": "5"},
	}

	first, err := tool.Invoke(context.Background(), inv)
	require.NoError(t, err)
	second, err := tool.Invoke(context.Background(), inv)
	require.NoError(t, err)

	// 只读检索，相同参数重复调用命中集合一致且不产生写入
	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].ID, second.Results[i].ID)
	}
	assert.Empty(t, index.entries)
}

func TestRegistry(t *testing.T) {
	search := NewSearchContentTool(testEmbeddingService(), &fakeIndex{})
	r := NewRegistry(search)

	got, err := r.Get(NameSearchContent)
	require.NoError(t, err)
	assert.Equal(t, NameSearchContent, got.Name())

	_, err = r.Get("no_such_tool")
	assert.Error(t, err)

	assert.Contains(t, r.Names(), NameSearchContent)
}
