package chain

import (
	workflowport "agent-writer-api/internal/workflow/port"
	workflowprompt "agent-writer-api/internal/workflow/prompt"
)

// Set 汇集全部内容生成链，按内容类型/质量控制环节各一条。
type Set struct {
	Plot       *ContentChain
	Author     *ContentChain
	World      *ContentChain
	Characters *ContentChain
	Lore       *ContentChain
	Critique   *ContentChain
	Enhance    *ContentChain
	Score      *ContentChain
}

// NewSet 创建生成链集合
func NewSet(factory workflowport.ChatModelFactory) *Set {
	return &Set{
		Plot:       NewContentChain(factory, workflowprompt.PromptPlotGenV1, "plot_gen", "plot", plotJSONSchema()),
		Author:     NewContentChain(factory, workflowprompt.PromptAuthorGenV1, "author_gen", "author", authorJSONSchema()),
		World:      NewContentChain(factory, workflowprompt.PromptWorldGenV1, "world_gen", "world_building", worldJSONSchema()),
		Characters: NewContentChain(factory, workflowprompt.PromptCharactersGenV1, "characters_gen", "characters", charactersJSONSchema()),
		Lore:       NewContentChain(factory, workflowprompt.PromptLoreExpansionV1, "lore_expansion", "lore", loreJSONSchema()),
		Critique:   NewContentChain(factory, workflowprompt.PromptCritiqueV1, "critique", "critique", critiqueJSONSchema()),
		Enhance:    NewContentChain(factory, workflowprompt.PromptEnhanceV1, "enhance", "enhance", enhanceJSONSchema()),
		Score:      NewContentChain(factory, workflowprompt.PromptScoreV1, "score", "score", scoreJSONSchema()),
	}
}
