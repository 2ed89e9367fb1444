// Package conversation 维护会话上下文：交互历史与内容引用
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	redisinfra "agent-writer-api/internal/infrastructure/persistence/redis"
	"agent-writer-api/pkg/logger"
)

var tracer = otel.Tracer("conversation")

const (
	sessionCacheTTL      = 10 * time.Minute
	defaultContextWindow = 10
)

// Context 面向规划器与代理的会话视图
type Context struct {
	Session      *entity.ConversationSession
	Refs         entity.ContentRefs
	Interactions []*entity.Interaction
}

// RenderWindow 将滚动窗口渲染为提示词可用的文本，交互按时间正序排列
func (c *Context) RenderWindow() string {
	if c == nil || len(c.Interactions) == 0 {
		return ""
	}
	out := ""
	for _, it := range c.Interactions {
		if out != "" {
			out += "\n"
		}
		out += fmt.Sprintf("%s: %s", it.Role, it.Content)
	}
	return out
}

// Manager 会话上下文管理器，postgres 为准、redis 读穿缓存
type Manager struct {
	sessions     repository.SessionRepository
	interactions repository.InteractionRepository
	cache        *redisinfra.Cache
	window       int
}

// NewManager 创建会话管理器
func NewManager(sessions repository.SessionRepository, interactions repository.InteractionRepository, cache *redisinfra.Cache, window int) *Manager {
	if window <= 0 {
		window = defaultContextWindow
	}
	return &Manager{
		sessions:     sessions,
		interactions: interactions,
		cache:        cache,
		window:       window,
	}
}

// Window 滚动窗口大小
func (m *Manager) Window() int { return m.window }

// Get 获取会话上下文，不存在时创建空会话
func (m *Manager) Get(ctx context.Context, sessionID, userID string) (*Context, error) {
	ctx, span := tracer.Start(ctx, "conversation.Get")
	defer span.End()

	session, err := m.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	recent, err := m.interactions.ListRecent(ctx, sessionID, userID, m.window)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	// 倒序取回，反转成时间正序
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	return &Context{
		Session:      session,
		Refs:         session.Refs(),
		Interactions: recent,
	}, nil
}

// Append 追加一条交互记录
func (m *Manager) Append(ctx context.Context, sessionID, userID string, role entity.Role, content string, metadata json.RawMessage) error {
	ctx, span := tracer.Start(ctx, "conversation.Append")
	defer span.End()

	interaction := entity.NewInteraction(sessionID, userID, role, content, metadata)
	if err := m.interactions.Append(ctx, interaction); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// MergeRefs 按类型合并内容引用，后写覆盖先写，并使缓存失效
func (m *Manager) MergeRefs(ctx context.Context, sessionID, userID string, updates entity.ContentRefs) error {
	if len(updates) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "conversation.MergeRefs")
	defer span.End()

	session, err := m.sessions.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	refs := session.Refs()
	for t, id := range updates {
		if id != "" {
			refs[t] = id
		}
	}
	session.SetRefs(refs)

	if err := m.sessions.UpdateRefs(ctx, session); err != nil {
		return fmt.Errorf("update refs: %w", err)
	}
	m.invalidate(ctx, sessionID, userID)
	return nil
}

// loadSession 读穿缓存加载会话
func (m *Manager) loadSession(ctx context.Context, sessionID, userID string) (*entity.ConversationSession, error) {
	if m.cache == nil {
		return m.sessions.GetOrCreate(ctx, sessionID, userID)
	}

	key := redisinfra.BuildSessionKey(userID, sessionID)
	data, err := m.cache.GetOrLoadSafe(ctx, key, sessionCacheTTL, func() (interface{}, error) {
		return m.sessions.GetOrCreate(ctx, sessionID, userID)
	})
	if err != nil {
		// 缓存故障时直连数据库
		logger.Warn(ctx, "会话缓存读取失败，回源数据库", "session_id", sessionID, "error", err.Error())
		return m.sessions.GetOrCreate(ctx, sessionID, userID)
	}

	var session entity.ConversationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode cached session: %w", err)
	}
	return &session, nil
}

func (m *Manager) invalidate(ctx context.Context, sessionID, userID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.InvalidateSession(ctx, userID, sessionID); err != nil {
		logger.Warn(ctx, "会话缓存失效失败", "session_id", sessionID, "error", err.Error())
	}
}
