package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"已设置的变量", "host: ${TEST_DB_HOST}", "host: db.internal"},
		{"未设置走默认值", "port: ${TEST_DB_PORT:5432}", "port: 5432"},
		{"已设置时默认值不生效", "host: ${TEST_DB_HOST:fallback}", "host: db.internal"},
		{"未设置且无默认值原样保留", "key: ${TEST_MISSING}", "key: ${TEST_MISSING}"},
		{"空默认值展开为空串", "pass: ${TEST_DB_PASS:}", "pass: "},
		{"同一行多个变量", "${TEST_DB_HOST}:${TEST_DB_PORT:5432}", "db.internal:5432"},
		{"无占位符", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, "agent-writer-api", v.GetString("app.name"))
	assert.Equal(t, 8080, v.GetInt("server.http.port"))
	assert.Equal(t, 5432, v.GetInt("database.postgres.port"))
	assert.Equal(t, 100000, v.GetInt("messaging.redis_stream.max_len"))

	// 编排核心默认值
	assert.Equal(t, "120s", v.GetString("orchestrator.step_timeout"))
	assert.Equal(t, 50, v.GetInt("orchestrator.plot_summary_min_length"))
	assert.Equal(t, 10, v.GetInt("orchestrator.context_window"))
	assert.InDelta(t, 9.5, v.GetFloat64("orchestrator.improvement.target_score"), 1e-9)
	assert.Equal(t, 4, v.GetInt("orchestrator.improvement.max_iterations"))
}
