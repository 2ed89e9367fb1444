// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/google/wire"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/conversation"
	"agent-writer-api/internal/application/improvement"
	"agent-writer-api/internal/application/orchestration"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/config"
	"agent-writer-api/internal/domain/repository"
	infraembedding "agent-writer-api/internal/infrastructure/embedding"
	"agent-writer-api/internal/infrastructure/llm"
	"agent-writer-api/internal/infrastructure/messaging"
	"agent-writer-api/internal/infrastructure/persistence/milvus"
	"agent-writer-api/internal/infrastructure/persistence/postgres"
	"agent-writer-api/internal/infrastructure/persistence/redis"
	"agent-writer-api/internal/interfaces/http/handler"
	"agent-writer-api/internal/interfaces/http/router"
	"agent-writer-api/internal/workflow/chain"
	workflowport "agent-writer-api/internal/workflow/port"
)

// DataLayer 数据层依赖容器（bootstrap 与 analytics-worker 共用）
type DataLayer struct {
	// PostgreSQL
	PgClient        *postgres.Client
	TxManager       repository.Transactor
	PlotRepo        repository.PlotRepository
	AuthorRepo      repository.AuthorRepository
	WorldRepo       repository.WorldRepository
	CharactersRepo  repository.CharactersRepository
	SessionRepo     repository.SessionRepository
	InteractionRepo repository.InteractionRepository
	ImprovementRepo repository.ImprovementRepository
	DecisionRepo    repository.DecisionRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Milvus
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewPlotRepository,
	postgres.NewAuthorRepository,
	postgres.NewWorldRepository,
	postgres.NewCharactersRepository,
	postgres.NewSessionRepository,
	postgres.NewInteractionRepository,
	postgres.NewImprovementRepository,
	postgres.NewDecisionRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
)

// MilvusSet Milvus 提供者集合
var MilvusSet = wire.NewSet(
	ProvideMilvusClient,
	milvus.NewRepository,
	wire.Bind(new(repository.ContentIndex), new(*milvus.Repository)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// EmbeddingSet Embedding 提供者集合
var EmbeddingSet = wire.NewSet(
	ProvideEmbedder,
	ProvideEmbeddingService,
)

// LLMSet 模型工厂与工作流链集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewSet,
)

// ApplicationSet 应用层提供者集合
var ApplicationSet = wire.NewSet(
	param.NewExtractor,
	ProvideAgentOptions,
	agent.NewDefaultRegistry,
	tool.NewSearchContentTool,
	ProvideToolRegistry,
	ProvideConversationManager,
	ProvideImprovementLoop,
	orchestration.NewContentLoader,
	orchestration.NewPlanner,
	orchestration.NewOrchestrator,
)

// HandlerSet HTTP 处理器与路由集合
var HandlerSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewChatHandler,
	handler.NewContentHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClient 提供 Milvus 客户端
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供决策记录生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideEmbedder 提供 Embedding 客户端
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	return infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
}

// ProvideEmbeddingService 提供批量 Embedding 服务
func ProvideEmbeddingService(embedder einoembedding.Embedder, cfg *config.Config) *infraembedding.Service {
	return infraembedding.NewService(embedder, cfg.Embedding.BatchSize)
}

// ProvideAgentOptions 从配置组装代理选项
func ProvideAgentOptions(cfg *config.Config) agent.Options {
	return agent.Options{
		StepTimeout:          cfg.Orchestrator.StepTimeout,
		PlotSummaryMinLength: cfg.Orchestrator.PlotSummaryMinLength,
	}
}

// ProvideToolRegistry 组装全部工具
func ProvideToolRegistry(
	plots repository.PlotRepository,
	authors repository.AuthorRepository,
	worlds repository.WorldRepository,
	characters repository.CharactersRepository,
	embedder *infraembedding.Service,
	index repository.ContentIndex,
	search *tool.SearchContentTool,
) *tool.Registry {
	return tool.NewRegistry(
		tool.NewSavePlotTool(plots, embedder, index),
		tool.NewSaveAuthorTool(authors, embedder, index),
		tool.NewSaveWorldTool(worlds, embedder, index),
		tool.NewSaveCharactersTool(characters, embedder, index),
		tool.NewSaveLoreTool(worlds),
		search,
	)
}

// ProvideConversationManager 提供会话上下文管理器
func ProvideConversationManager(
	sessions repository.SessionRepository,
	interactions repository.InteractionRepository,
	cache *redis.Cache,
	cfg *config.Config,
) *conversation.Manager {
	return conversation.NewManager(sessions, interactions, cache, cfg.Orchestrator.ContextWindow)
}

// ProvideImprovementLoop 提供迭代改进循环
func ProvideImprovementLoop(agents *agent.Registry, sessions repository.ImprovementRepository, cfg *config.Config) *improvement.Loop {
	return improvement.NewLoop(agents, sessions, cfg.Orchestrator.Improvement.TargetScore, cfg.Orchestrator.Improvement.MaxIterations)
}
