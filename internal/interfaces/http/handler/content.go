package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	"agent-writer-api/internal/interfaces/http/dto"
	"agent-writer-api/pkg/logger"
)

// ContentHandler 生成内容读取处理器
type ContentHandler struct {
	plots        repository.PlotRepository
	authors      repository.AuthorRepository
	worlds       repository.WorldRepository
	characters   repository.CharactersRepository
	improvements repository.ImprovementRepository
	search       *tool.SearchContentTool
}

// NewContentHandler 创建内容读取处理器
func NewContentHandler(
	plots repository.PlotRepository,
	authors repository.AuthorRepository,
	worlds repository.WorldRepository,
	characters repository.CharactersRepository,
	improvements repository.ImprovementRepository,
	search *tool.SearchContentTool,
) *ContentHandler {
	return &ContentHandler{
		plots:        plots,
		authors:      authors,
		worlds:       worlds,
		characters:   characters,
		improvements: improvements,
		search:       search,
	}
}

// ListPlots 按用户分页列出情节
// @Summary 列出情节
// @Tags Content
// @Produce json
// @Param user_id query string true "用户 ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} dto.Response[[]entity.Plot]
// @Router /v1/plots [get]
func (h *ContentHandler) ListPlots(c *gin.Context) {
	listContent(c, h.plots.ListByUser)
}

// ListAuthors 按用户分页列出作者人格
// @Summary 列出作者人格
// @Tags Content
// @Produce json
// @Success 200 {object} dto.Response[[]entity.Author]
// @Router /v1/authors [get]
func (h *ContentHandler) ListAuthors(c *gin.Context) {
	listContent(c, h.authors.ListByUser)
}

// ListWorlds 按用户分页列出世界观
// @Summary 列出世界观
// @Tags Content
// @Produce json
// @Success 200 {object} dto.Response[[]entity.WorldBuilding]
// @Router /v1/worlds [get]
func (h *ContentHandler) ListWorlds(c *gin.Context) {
	listContent(c, h.worlds.ListByUser)
}

// ListCharacters 按用户分页列出角色组
// @Summary 列出角色组
// @Tags Content
// @Produce json
// @Success 200 {object} dto.Response[[]entity.CharacterCast]
// @Router /v1/characters [get]
func (h *ContentHandler) ListCharacters(c *gin.Context) {
	listContent(c, h.characters.ListByUser)
}

// listContent 列表查询的公共骨架
func listContent[T any](c *gin.Context, list func(ctx context.Context, userID string, p repository.Pagination) (*repository.PagedResult[T], error)) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	result, err := list(c.Request.Context(), q.UserID, q.Pagination())
	if err != nil {
		logger.Error(c.Request.Context(), "内容列表查询失败", err, "user_id", q.UserID)
		dto.InternalError(c, "list query failed")
		return
	}
	dto.SuccessWithPage(c, result.Items, dto.PageMetaOf(result))
}

// GetImprovement 读取迭代改进会话及其审计轨迹
// @Summary 查询改进会话
// @Tags Content
// @Produce json
// @Param id path string true "改进会话 ID"
// @Success 200 {object} dto.Response[entity.ImprovementSession]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/improvements/{id} [get]
func (h *ContentHandler) GetImprovement(c *gin.Context) {
	id := c.Param("id")
	session, err := h.improvements.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "改进会话查询失败", err, "improvement_id", id)
		dto.InternalError(c, "improvement query failed")
		return
	}
	if session == nil {
		dto.NotFound(c, "improvement session not found")
		return
	}
	dto.Success(c, session)
}

// SearchContent 语义检索已生成内容
// @Summary 检索内容
// @Tags Content
// @Produce json
// @Param user_id query string true "用户 ID"
// @Param query query string true "检索词"
// @Param content_type query string false "内容类型过滤"
// @Param top_k query int false "返回条数"
// @Success 200 {object} dto.Response[[]repository.ContentSummary]
// @Router /v1/content/search [get]
func (h *ContentHandler) SearchContent(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}
	if q.ContentType != "" && !validContentType(q.ContentType) {
		dto.BadRequest(c, "invalid content_type")
		return
	}

	out, err := h.search.Invoke(c.Request.Context(), &tool.Invocation{
		UserID: q.UserID,
		Args: map[string]string{
			"query":        q.Query,
			"content_type": q.ContentType,
			"top_k":        itoa(q.TopK),
		},
	})
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	dto.Success(c, out.Results)
}

func validContentType(s string) bool {
	switch entity.ContentType(s) {
	case entity.ContentTypePlot, entity.ContentTypeAuthor, entity.ContentTypeWorld, entity.ContentTypeCharacters:
		return true
	default:
		return false
	}
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
