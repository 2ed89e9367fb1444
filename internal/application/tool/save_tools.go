package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	"agent-writer-api/internal/infrastructure/embedding"
	wfmodel "agent-writer-api/internal/workflow/model"
	"agent-writer-api/pkg/metrics"
)

func observeTool(name string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ToolCallTotal.WithLabelValues(name, status).Inc()
}

// SavePlotTool 持久化情节草稿
type SavePlotTool struct {
	repo    repository.PlotRepository
	indexer *summaryIndexer
}

// NewSavePlotTool 创建情节保存工具
func NewSavePlotTool(repo repository.PlotRepository, embedder *embedding.Service, index repository.ContentIndex) *SavePlotTool {
	return &SavePlotTool{repo: repo, indexer: newSummaryIndexer(embedder, index)}
}

func (t *SavePlotTool) Name() string { return NameSavePlot }

func (t *SavePlotTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "session_id", Required: true},
	}
}

// Invoke 校验草稿后入库并索引摘要
func (t *SavePlotTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	draft, ok := in.Payload.(*wfmodel.PlotDraft)
	if !ok || draft == nil {
		return nil, fmt.Errorf("save_plot: payload is not a plot draft")
	}
	if draft.Title == "" || draft.PlotSummary == "" {
		return nil, fmt.Errorf("save_plot: title and plot_summary are required")
	}

	plot := entity.NewPlot(in.UserID, in.SessionID, draft.Title, draft.PlotSummary)
	plot.Genre = draft.Genre
	plot.Subgenre = draft.Subgenre
	plot.Microgenre = draft.Microgenre
	plot.Trope = draft.Trope
	plot.Tone = draft.Tone
	if len(draft.Audience) > 0 {
		if data, merr := json.Marshal(draft.Audience); merr == nil {
			plot.Audience = data
		}
	}

	if err = t.repo.Create(ctx, plot); err != nil {
		return nil, fmt.Errorf("save_plot: %w", err)
	}
	t.indexer.indexSummary(ctx, plot.ID, entity.ContentTypePlot, in.UserID, plot.Title, plot.PlotSummary)
	return &Output{ID: plot.ID, Entity: plot}, nil
}

// SaveAuthorTool 持久化作者人格草稿
type SaveAuthorTool struct {
	repo    repository.AuthorRepository
	indexer *summaryIndexer
}

// NewSaveAuthorTool 创建作者保存工具
func NewSaveAuthorTool(repo repository.AuthorRepository, embedder *embedding.Service, index repository.ContentIndex) *SaveAuthorTool {
	return &SaveAuthorTool{repo: repo, indexer: newSummaryIndexer(embedder, index)}
}

func (t *SaveAuthorTool) Name() string { return NameSaveAuthor }

func (t *SaveAuthorTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "session_id", Required: true},
	}
}

// Invoke 校验草稿后入库并索引摘要
func (t *SaveAuthorTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	draft, ok := in.Payload.(*wfmodel.AuthorDraft)
	if !ok || draft == nil {
		return nil, fmt.Errorf("save_author: payload is not an author draft")
	}
	if draft.AuthorName == "" || draft.Biography == "" || draft.WritingStyle == "" {
		return nil, fmt.Errorf("save_author: author_name, biography and writing_style are required")
	}

	author := entity.NewAuthor(in.UserID, in.SessionID, draft.AuthorName, draft.Biography, draft.WritingStyle)
	author.PenName = draft.PenName

	if err = t.repo.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("save_author: %w", err)
	}
	t.indexer.indexSummary(ctx, author.ID, entity.ContentTypeAuthor, in.UserID, author.AuthorName, author.Biography)
	return &Output{ID: author.ID, Entity: author}, nil
}

// SaveWorldTool 持久化世界观草稿，要求 plot_id
type SaveWorldTool struct {
	repo    repository.WorldRepository
	indexer *summaryIndexer
}

// NewSaveWorldTool 创建世界观保存工具
func NewSaveWorldTool(repo repository.WorldRepository, embedder *embedding.Service, index repository.ContentIndex) *SaveWorldTool {
	return &SaveWorldTool{repo: repo, indexer: newSummaryIndexer(embedder, index)}
}

func (t *SaveWorldTool) Name() string { return NameSaveWorld }

func (t *SaveWorldTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "session_id", Required: true},
		{Name: "plot_id", Required: true, Description: "所属情节 ID"},
	}
}

// Invoke 校验草稿与情节引用后入库并索引摘要
func (t *SaveWorldTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	if err = requireArgs(in, "plot_id"); err != nil {
		return nil, fmt.Errorf("save_world_building: %w", err)
	}
	draft, ok := in.Payload.(*wfmodel.WorldDraft)
	if !ok || draft == nil {
		return nil, fmt.Errorf("save_world_building: payload is not a world draft")
	}
	if draft.WorldName == "" || draft.Overview == "" {
		return nil, fmt.Errorf("save_world_building: world_name and overview are required")
	}

	world := entity.NewWorldBuilding(in.UserID, in.SessionID, in.Args["plot_id"],
		draft.WorldName, entity.WorldType(draft.WorldType), draft.Overview)
	world.Geography = marshalSection(draft.Geography)
	world.Politics = marshalSection(draft.Politics)
	world.Culture = marshalSection(draft.Culture)
	world.Economics = marshalSection(draft.Economics)
	world.History = marshalSection(draft.History)
	world.PowerSystems = marshalSection(draft.PowerSystems)
	world.Languages = marshalSection(draft.Languages)
	world.Religions = marshalSection(draft.Religions)
	world.UniqueElements = marshalSection(draft.UniqueElements)

	if err = t.repo.Create(ctx, world); err != nil {
		return nil, fmt.Errorf("save_world_building: %w", err)
	}
	t.indexer.indexSummary(ctx, world.ID, entity.ContentTypeWorld, in.UserID, world.WorldName, world.Overview)
	return &Output{ID: world.ID, Entity: world}, nil
}

func marshalSection(section map[string]any) json.RawMessage {
	if len(section) == 0 {
		return nil
	}
	data, err := json.Marshal(section)
	if err != nil {
		return nil
	}
	return data
}

// SaveCharactersTool 持久化角色组草稿，要求 plot_id 与 world_id
type SaveCharactersTool struct {
	repo    repository.CharactersRepository
	indexer *summaryIndexer
}

// NewSaveCharactersTool 创建角色组保存工具
func NewSaveCharactersTool(repo repository.CharactersRepository, embedder *embedding.Service, index repository.ContentIndex) *SaveCharactersTool {
	return &SaveCharactersTool{repo: repo, indexer: newSummaryIndexer(embedder, index)}
}

func (t *SaveCharactersTool) Name() string { return NameSaveCharacters }

func (t *SaveCharactersTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "session_id", Required: true},
		{Name: "plot_id", Required: true, Description: "所属情节 ID"},
		{Name: "world_id", Required: true, Description: "所属世界观 ID"},
	}
}

// Invoke 校验草稿与引用后入库并索引摘要
func (t *SaveCharactersTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	if err = requireArgs(in, "plot_id", "world_id"); err != nil {
		return nil, fmt.Errorf("save_characters: %w", err)
	}
	draft, ok := in.Payload.(*wfmodel.CharactersDraft)
	if !ok || draft == nil {
		return nil, fmt.Errorf("save_characters: payload is not a characters draft")
	}
	if len(draft.Characters) == 0 {
		return nil, fmt.Errorf("save_characters: at least one character is required")
	}

	characters, err := json.Marshal(draft.Characters)
	if err != nil {
		return nil, fmt.Errorf("save_characters: marshal characters: %w", err)
	}
	var relationships json.RawMessage
	if len(draft.Relationships) > 0 {
		if data, merr := json.Marshal(draft.Relationships); merr == nil {
			relationships = data
		}
	}

	cast := entity.NewCharacterCast(in.UserID, in.SessionID, in.Args["plot_id"], in.Args["world_id"],
		len(draft.Characters), characters, relationships)

	if err = t.repo.Create(ctx, cast); err != nil {
		return nil, fmt.Errorf("save_characters: %w", err)
	}
	t.indexer.indexSummary(ctx, cast.ID, entity.ContentTypeCharacters, in.UserID,
		characterTitle(draft), characterSummary(draft))
	return &Output{ID: cast.ID, Entity: cast}, nil
}

func characterTitle(draft *wfmodel.CharactersDraft) string {
	if len(draft.Characters) == 0 {
		return "角色组"
	}
	return fmt.Sprintf("角色组（%d 人，主角 %s）", len(draft.Characters), draft.Characters[0].Name)
}

func characterSummary(draft *wfmodel.CharactersDraft) string {
	summary := ""
	for i, c := range draft.Characters {
		if i > 0 {
			summary += "；"
		}
		summary += c.Name
		if c.Role != "" {
			summary += "（" + c.Role + "）"
		}
	}
	return summary
}
