package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/domain/entity"
)

// sessionRepoStub 内存会话仓储
type sessionRepoStub struct {
	sessions map[string]*entity.ConversationSession
	updates  int
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{sessions: make(map[string]*entity.ConversationSession)}
}

func (s *sessionRepoStub) GetOrCreate(_ context.Context, sessionID, userID string) (*entity.ConversationSession, error) {
	key := userID + "/" + sessionID
	if sess, ok := s.sessions[key]; ok {
		return sess, nil
	}
	sess := entity.NewConversationSession(sessionID, userID)
	s.sessions[key] = sess
	return sess, nil
}

func (s *sessionRepoStub) UpdateRefs(_ context.Context, session *entity.ConversationSession) error {
	s.sessions[session.UserID+"/"+session.SessionID] = session
	s.updates++
	return nil
}

// interactionRepoStub 内存交互仓储，ListRecent 按时间倒序返回
type interactionRepoStub struct {
	items []*entity.Interaction
}

func (s *interactionRepoStub) Append(_ context.Context, interaction *entity.Interaction) error {
	s.items = append(s.items, interaction)
	return nil
}

func (s *interactionRepoStub) ListRecent(_ context.Context, sessionID, userID string, limit int) ([]*entity.Interaction, error) {
	var matched []*entity.Interaction
	for i := len(s.items) - 1; i >= 0 && len(matched) < limit; i-- {
		it := s.items[i]
		if it.SessionID == sessionID && it.UserID == userID {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

func newTestManager(window int) (*Manager, *sessionRepoStub, *interactionRepoStub) {
	sessions := newSessionRepoStub()
	interactions := &interactionRepoStub{}
	return NewManager(sessions, interactions, nil, window), sessions, interactions
}

func TestGet_CreatesEmptySession(t *testing.T) {
	m, _, _ := newTestManager(0)
	assert.Equal(t, 10, m.Window())

	ctx, err := m.Get(context.Background(), "session-1", "user-1")

	require.NoError(t, err)
	require.NotNil(t, ctx.Session)
	assert.Empty(t, ctx.Refs)
	assert.Empty(t, ctx.Interactions)
	assert.Empty(t, ctx.RenderWindow())
}

func TestGetAfterAppend_WindowInAscendingOrder(t *testing.T) {
	m, _, _ := newTestManager(3)
	bg := context.Background()

	contents := []string{"第一句", "第二句", "第三句", "第四句"}
	for _, c := range contents {
		require.NoError(t, m.Append(bg, "session-1", "user-1", entity.RoleUser, c, nil))
	}

	ctx, err := m.Get(bg, "session-1", "user-1")
	require.NoError(t, err)

	// 窗口只保留最近三条，且按时间正序排列
	require.Len(t, ctx.Interactions, 3)
	assert.Equal(t, "第二句", ctx.Interactions[0].Content)
	assert.Equal(t, "第四句", ctx.Interactions[2].Content)

	window := ctx.RenderWindow()
	assert.Contains(t, window, "user: 第二句")
	assert.NotContains(t, window, "第一句")
}

func TestMergeRefs(t *testing.T) {
	m, sessions, _ := newTestManager(0)
	bg := context.Background()

	err := m.MergeRefs(bg, "session-1", "user-1", entity.ContentRefs{
		entity.ContentTypePlot: "plot-1",
	})
	require.NoError(t, err)

	// 同类型后写覆盖，不同类型并存
	err = m.MergeRefs(bg, "session-1", "user-1", entity.ContentRefs{
		entity.ContentTypePlot:  "plot-2",
		entity.ContentTypeWorld: "world-1",
	})
	require.NoError(t, err)

	ctx, err := m.Get(bg, "session-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "plot-2", ctx.Refs[entity.ContentTypePlot])
	assert.Equal(t, "world-1", ctx.Refs[entity.ContentTypeWorld])
	assert.Equal(t, 2, sessions.updates)
}

func TestMergeRefs_SkipsEmptyValues(t *testing.T) {
	m, _, _ := newTestManager(0)
	bg := context.Background()

	require.NoError(t, m.MergeRefs(bg, "session-1", "user-1", entity.ContentRefs{
		entity.ContentTypePlot: "plot-1",
	}))

	// 空 ID 不覆盖既有引用
	require.NoError(t, m.MergeRefs(bg, "session-1", "user-1", entity.ContentRefs{
		entity.ContentTypePlot: "",
	}))

	ctx, err := m.Get(bg, "session-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "plot-1", ctx.Refs[entity.ContentTypePlot])
}

func TestMergeRefs_NoopOnEmptyUpdates(t *testing.T) {
	m, sessions, _ := newTestManager(0)

	require.NoError(t, m.MergeRefs(context.Background(), "session-1", "user-1", nil))
	assert.Zero(t, sessions.updates)
}

func TestRenderWindow_NilContext(t *testing.T) {
	var ctx *Context
	assert.Empty(t, ctx.RenderWindow())
}
