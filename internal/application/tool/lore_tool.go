package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"agent-writer-api/internal/domain/repository"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// SaveLoreTool 将补充设定并入既有世界观记录
type SaveLoreTool struct {
	repo repository.WorldRepository
}

// NewSaveLoreTool 创建补充设定保存工具
func NewSaveLoreTool(repo repository.WorldRepository) *SaveLoreTool {
	return &SaveLoreTool{repo: repo}
}

func (t *SaveLoreTool) Name() string { return NameSaveLore }

func (t *SaveLoreTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "session_id", Required: true},
		{Name: "world_id", Required: true, Description: "要补充的世界观 ID"},
	}
}

// Invoke 校验条目后按主题并入世界观的独特元素板块，同主题后写覆盖
func (t *SaveLoreTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	if err = requireArgs(in, "world_id"); err != nil {
		return nil, fmt.Errorf("save_lore: %w", err)
	}
	draft, ok := in.Payload.(*wfmodel.LoreDraft)
	if !ok || draft == nil {
		return nil, fmt.Errorf("save_lore: payload is not a lore draft")
	}
	if len(draft.Entries) == 0 {
		return nil, fmt.Errorf("save_lore: at least one lore entry is required")
	}

	world, err := t.repo.GetByID(ctx, in.Args["world_id"])
	if err != nil {
		return nil, fmt.Errorf("save_lore: %w", err)
	}
	if world == nil {
		return nil, fmt.Errorf("save_lore: world %s not found", in.Args["world_id"])
	}

	world.UniqueElements = mergeLoreEntries(world.UniqueElements, draft.Entries)
	if err = t.repo.Update(ctx, world); err != nil {
		return nil, fmt.Errorf("save_lore: %w", err)
	}
	return &Output{ID: world.ID, Entity: world}, nil
}

// mergeLoreEntries 将条目合入既有 JSON 板块，原板块损坏时整体重建
func mergeLoreEntries(existing json.RawMessage, entries []wfmodel.LoreEntry) json.RawMessage {
	section := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &section); err != nil {
			section = make(map[string]any)
		}
	}
	for _, e := range entries {
		section[e.Topic] = e.Content
	}
	data, err := json.Marshal(section)
	if err != nil {
		return existing
	}
	return data
}
