package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
)

// authorRepository 作者仓储实现
type authorRepository struct {
	client *Client
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(client *Client) repository.AuthorRepository {
	return &authorRepository{client: client}
}

// Create 创建作者
func (r *authorRepository) Create(ctx context.Context, author *entity.Author) error {
	ctx, span := tracer.Start(ctx, "AuthorRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("author.id", author.ID))

	if err := getDB(ctx, r.client.db).Create(author).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取作者
func (r *authorRepository) GetByID(ctx context.Context, id string) (*entity.Author, error) {
	ctx, span := tracer.Start(ctx, "AuthorRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("author.id", id))

	var author entity.Author
	err := getDB(ctx, r.client.db).Where("id = ?", id).First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return &author, nil
}

// ListByUser 分页查询用户的作者设定
func (r *authorRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Author], error) {
	ctx, span := tracer.Start(ctx, "AuthorRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	db := getDB(ctx, r.client.db).Model(&entity.Author{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count authors: %w", err)
	}

	var authors []*entity.Author
	err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&authors).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}

	return repository.NewPagedResult(authors, total, pagination), nil
}
