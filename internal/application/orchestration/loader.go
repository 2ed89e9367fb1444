package orchestration

import (
	"context"
	"encoding/json"
	"fmt"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// ContentLoader 按引用读取既有内容，供上游上下文合并与改进循环使用
type ContentLoader struct {
	plots      repository.PlotRepository
	authors    repository.AuthorRepository
	worlds     repository.WorldRepository
	characters repository.CharactersRepository
}

// NewContentLoader 创建内容读取器
func NewContentLoader(plots repository.PlotRepository, authors repository.AuthorRepository,
	worlds repository.WorldRepository, characters repository.CharactersRepository) *ContentLoader {
	return &ContentLoader{plots: plots, authors: authors, worlds: worlds, characters: characters}
}

// LoadDraft 读取既有内容并还原为草稿结构，供代理作为上游上下文
func (l *ContentLoader) LoadDraft(ctx context.Context, ct entity.ContentType, id string) (any, error) {
	switch ct {
	case entity.ContentTypePlot:
		plot, err := l.plots.GetByID(ctx, id)
		if err != nil || plot == nil {
			return nil, notFoundOr(err, ct, id)
		}
		draft := &wfmodel.PlotDraft{
			Title:       plot.Title,
			PlotSummary: plot.PlotSummary,
			Genre:       plot.Genre,
			Subgenre:    plot.Subgenre,
			Microgenre:  plot.Microgenre,
			Trope:       plot.Trope,
			Tone:        plot.Tone,
		}
		if len(plot.Audience) > 0 {
			_ = json.Unmarshal(plot.Audience, &draft.Audience)
		}
		return draft, nil
	case entity.ContentTypeAuthor:
		author, err := l.authors.GetByID(ctx, id)
		if err != nil || author == nil {
			return nil, notFoundOr(err, ct, id)
		}
		return &wfmodel.AuthorDraft{
			AuthorName:   author.AuthorName,
			PenName:      author.PenName,
			Biography:    author.Biography,
			WritingStyle: author.WritingStyle,
		}, nil
	case entity.ContentTypeWorld:
		world, err := l.worlds.GetByID(ctx, id)
		if err != nil || world == nil {
			return nil, notFoundOr(err, ct, id)
		}
		draft := &wfmodel.WorldDraft{
			WorldName: world.WorldName,
			WorldType: string(world.WorldType),
			Overview:  world.Overview,
		}
		unmarshalSection(world.Geography, &draft.Geography)
		unmarshalSection(world.Politics, &draft.Politics)
		unmarshalSection(world.Culture, &draft.Culture)
		unmarshalSection(world.Economics, &draft.Economics)
		unmarshalSection(world.History, &draft.History)
		unmarshalSection(world.PowerSystems, &draft.PowerSystems)
		unmarshalSection(world.Languages, &draft.Languages)
		unmarshalSection(world.Religions, &draft.Religions)
		unmarshalSection(world.UniqueElements, &draft.UniqueElements)
		return draft, nil
	case entity.ContentTypeCharacters:
		cast, err := l.characters.GetByID(ctx, id)
		if err != nil || cast == nil {
			return nil, notFoundOr(err, ct, id)
		}
		draft := &wfmodel.CharactersDraft{CharacterCount: cast.CharacterCount}
		if len(cast.Characters) > 0 {
			_ = json.Unmarshal(cast.Characters, &draft.Characters)
		}
		if len(cast.Relationships) > 0 {
			_ = json.Unmarshal(cast.Relationships, &draft.Relationships)
		}
		return draft, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", ct)
	}
}

// LoadText 读取既有内容的文本表示，供改进循环作为初始内容
func (l *ContentLoader) LoadText(ctx context.Context, ct entity.ContentType, id string) (string, error) {
	draft, err := l.LoadDraft(ctx, ct, id)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode content: %w", err)
	}
	return string(data), nil
}

func notFoundOr(err error, ct entity.ContentType, id string) error {
	if err != nil {
		return fmt.Errorf("load %s %s: %w", ct, id, err)
	}
	return fmt.Errorf("%s %s not found", ct, id)
}

func unmarshalSection(raw json.RawMessage, out *map[string]any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}
