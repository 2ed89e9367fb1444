// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"agent-writer-api/internal/application/orchestration"
	"agent-writer-api/internal/interfaces/http/dto"
	pkgerrors "agent-writer-api/pkg/errors"
	"agent-writer-api/pkg/logger"
)

// ChatHandler 聊天路由处理器
type ChatHandler struct {
	orchestrator *orchestration.Orchestrator
}

// NewChatHandler 创建聊天路由处理器
func NewChatHandler(orchestrator *orchestration.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// Route 路由一次聊天请求
// @Summary 路由聊天请求
// @Description 解析自然语言请求并执行对应的生成工作流
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.RouteRequest true "路由请求"
// @Success 200 {object} dto.Response[dto.RouteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chat/route [post]
func (h *ChatHandler) Route(c *gin.Context) {
	var req dto.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, req.UserID)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, req.SessionID)

	result, err := h.orchestrator.Route(ctx, req.ToRequest())
	if err != nil {
		// 只有不可恢复故障才走这条路径
		logger.Error(ctx, "路由请求失败", err, "user_id", req.UserID)
		status := http.StatusInternalServerError
		var appErr *pkgerrors.AppError
		if errors.As(err, &appErr) {
			status = appErr.HTTPStatus
		}
		dto.Error(c, status, "request routing failed")
		return
	}
	dto.Success(c, dto.FromWorkflowResult(result))
}

// RouteStream 以 SSE 流式返回路由进度与结果
// @Summary 流式路由聊天请求
// @Description 与 Route 相同，但以 SSE 推送状态机进度事件与最终结果
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param request body dto.RouteRequest true "路由请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/chat/route/stream [post]
func (h *ChatHandler) RouteStream(c *gin.Context) {
	var req dto.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, req.UserID)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, req.SessionID)

	events := make(chan orchestration.ProgressEvent, 16)

	var result *orchestration.WorkflowResult
	var routeErr error
	go func() {
		// result 与 routeErr 的读取以 events 关闭为同步点
		defer close(events)
		result, routeErr = h.orchestrator.RouteWithProgress(ctx, req.ToRequest(), func(ev orchestration.ProgressEvent) {
			select {
			case events <- ev:
			default:
				// 消费不及时则丢弃进度事件，结果不受影响
			}
		})
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				h.streamFinal(c, result, routeErr)
				return false
			}
			c.SSEvent("progress", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *ChatHandler) streamFinal(c *gin.Context, result *orchestration.WorkflowResult, err error) {
	if err != nil {
		c.SSEvent("error", gin.H{"message": "request routing failed"})
		return
	}
	c.SSEvent("result", dto.FromWorkflowResult(result))
}
