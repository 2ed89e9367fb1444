package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agent-writer-api/internal/infrastructure/persistence/milvus"
	"agent-writer-api/internal/infrastructure/persistence/postgres"
	"agent-writer-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg     *postgres.Client
	redis  *redis.Client
	milvus *milvus.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client) *HealthHandler {
	return &HealthHandler{
		pg:     pg,
		redis:  redisClient,
		milvus: milvusClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 存活检查
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Live 存活探针
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪检查：postgres 与 redis 必需，milvus 可降级
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"postgres": {Status: "unknown"},
		"redis":    {Status: "unknown"},
		"milvus":   {Status: "unknown"},
	}
	ready := true

	ready = h.checkPostgres(ctx, checks["postgres"]) && ready
	ready = h.checkRedis(ctx, checks["redis"]) && ready
	// milvus 故障时检索降级为空结果，不影响就绪
	h.checkMilvus(ctx, checks["milvus"])

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, readinessResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) checkPostgres(ctx context.Context, check *readinessCheck) bool {
	if h.pg == nil {
		check.Status = "missing"
		check.Error = "postgres client not configured"
		return false
	}
	start := time.Now()
	if err := h.pg.HealthCheck(ctx); err != nil {
		check.Status = "down"
		check.Error = err.Error()
		return false
	}
	check.Status = "up"
	check.LatencyMs = time.Since(start).Milliseconds()
	return true
}

func (h *HealthHandler) checkRedis(ctx context.Context, check *readinessCheck) bool {
	if h.redis == nil {
		check.Status = "missing"
		check.Error = "redis client not configured"
		return false
	}
	start := time.Now()
	if err := h.redis.Ping(ctx); err != nil {
		check.Status = "down"
		check.Error = err.Error()
		return false
	}
	check.Status = "up"
	check.LatencyMs = time.Since(start).Milliseconds()
	return true
}

func (h *HealthHandler) checkMilvus(ctx context.Context, check *readinessCheck) {
	if h.milvus == nil {
		check.Status = "missing"
		return
	}
	start := time.Now()
	if err := h.milvus.HealthCheck(ctx); err != nil {
		check.Status = "down"
		check.Error = err.Error()
		return
	}
	check.Status = "up"
	check.LatencyMs = time.Since(start).Milliseconds()
}
