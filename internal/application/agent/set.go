package agent

import (
	"agent-writer-api/internal/workflow/chain"
)

// NewDefaultRegistry 用一套内容链装配全部代理并注册
func NewDefaultRegistry(chains *chain.Set, opts Options) *Registry {
	return NewRegistry(
		NewPlotAgent(chains.Plot, opts),
		NewAuthorAgent(chains.Author, opts),
		NewWorldAgent(chains.World, opts),
		NewCharactersAgent(chains.Characters, opts),
		NewLoreExpansionAgent(chains.Lore, opts),
		NewCritiqueAgent(chains.Critique, opts),
		NewEnhancementAgent(chains.Enhance, opts),
		NewScoringAgent(chains.Score, opts),
	)
}
