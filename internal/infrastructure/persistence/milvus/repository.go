// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
)

// Repository 内容向量索引仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量索引仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

var _ repository.ContentIndex = (*Repository)(nil)

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *milvusentity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// CreatePartition 创建用户分区
func (r *Repository) CreatePartition(ctx context.Context, collection, userID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreatePartition",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("partition", PartitionName(userID)),
		))
	defer span.End()

	collName := r.client.CollectionName(collection)
	return r.client.milvus.CreatePartition(ctx, collName, PartitionName(userID))
}

// Index 索引一条生成内容摘要
func (r *Repository) Index(ctx context.Context, e *repository.ContentIndexEntry) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.Index",
		trace.WithAttributes(
			attribute.String("content.id", e.ID),
			attribute.String("content.type", string(e.ContentType)),
			attribute.String("user.id", e.UserID),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionContentSummaries)
	partitionName := PartitionName(e.UserID)

	// 确保用户分区存在
	has, _ := r.client.milvus.HasPartition(ctx, collName, partitionName)
	if !has {
		if err := r.CreatePartition(ctx, CollectionContentSummaries, e.UserID); err != nil {
			span.RecordError(err)
			return err
		}
	}

	idCol := milvusentity.NewColumnVarChar("id", []string{e.ID})
	vectorCol := milvusentity.NewColumnFloatVector("vector", VectorDimension, [][]float32{e.Vector})
	userCol := milvusentity.NewColumnVarChar("user_id", []string{e.UserID})
	typeCol := milvusentity.NewColumnVarChar("content_type", []string{string(e.ContentType)})
	titleCol := milvusentity.NewColumnVarChar("title", []string{e.Title})
	summaryCol := milvusentity.NewColumnVarChar("summary", []string{e.Summary})

	_, err := r.client.milvus.Insert(ctx, collName, partitionName,
		idCol, vectorCol, userCol, typeCol, titleCol, summaryCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to index content: %w", err)
	}

	return nil
}

// Search 按向量检索用户的内容摘要，contentType 为空时不按类型过滤
func (r *Repository) Search(ctx context.Context, queryVector []float32, contentType entity.ContentType, userID string, topK int) ([]*repository.ContentSummary, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("content.type", string(contentType)),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionContentSummaries)
	partitionName := PartitionName(userID)

	// 用户尚无索引数据时分区不存在，直接返回空结果
	if has, err := r.client.milvus.HasPartition(ctx, collName, partitionName); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check partition: %w", err)
	} else if !has {
		return []*repository.ContentSummary{}, nil
	}

	filter := fmt.Sprintf(`user_id == "%s"`, userID)
	if contentType != "" {
		filter += fmt.Sprintf(` && content_type == "%s"`, contentType)
	}

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		[]string{partitionName},
		filter,
		[]string{"id", "content_type", "user_id", "title", "summary"},
		[]milvusentity.Vector{milvusentity.FloatVector(queryVector)},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var summaries []*repository.ContentSummary
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			cs := &repository.ContentSummary{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*milvusentity.ColumnVarChar); ok {
				cs.ID = idCol.Data()[i]
			}
			if typeCol, ok := result.Fields.GetColumn("content_type").(*milvusentity.ColumnVarChar); ok {
				cs.ContentType = entity.ContentType(typeCol.Data()[i])
			}
			if userCol, ok := result.Fields.GetColumn("user_id").(*milvusentity.ColumnVarChar); ok {
				cs.UserID = userCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*milvusentity.ColumnVarChar); ok {
				cs.Title = titleCol.Data()[i]
			}
			if summaryCol, ok := result.Fields.GetColumn("summary").(*milvusentity.ColumnVarChar); ok {
				cs.Summary = summaryCol.Data()[i]
			}

			summaries = append(summaries, cs)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(summaries)))
	return summaries, nil
}

// EnsureContentSummariesCollection 确保 content_summaries 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureContentSummariesCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionContentSummaries)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ContentSummariesSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionContentSummaries)
	}

	return r.client.LoadCollection(ctx, CollectionContentSummaries)
}
