package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
)

// Service 向量化服务，封装 Embedder 并输出 Milvus 需要的 float32 向量
type Service struct {
	embedder  embedding.Embedder
	batchSize int
}

// NewService 创建向量化服务
func NewService(embedder embedding.Embedder, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Service{
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// EmbedOne 向量化单条文本
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vectors[0], nil
}

// Embed 批量向量化文本
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.embedder.EmbedStrings(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed texts: %w", err)
		}

		for _, vec := range batch {
			converted := make([]float32, len(vec))
			for j, v := range vec {
				converted[j] = float32(v)
			}
			all = append(all, converted)
		}
	}

	return all, nil
}
