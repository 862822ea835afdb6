package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "classchat.log", cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.Room)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"CLASSCHAT_ENV":           "production",
		"CLASSCHAT_BASE_URL":      "https://chat.school.example",
		"CLASSCHAT_TOKEN":         "tok",
		"CLASSCHAT_USERNAME":      "alice",
		"CLASSCHAT_ROOM":          "math-101",
		"CLASSCHAT_POLL_INTERVAL": "3s",
		"CLASSCHAT_PAGE_SIZE":     "100",
		"CLASSCHAT_METRICS_ADDR":  "127.0.0.1:9100",
		"CLASSCHAT_LOG_LEVEL":     "debug",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "math-101", cfg.Room)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"CLASSCHAT_BASE_URL":      "localhost:8080",
		"CLASSCHAT_POLL_INTERVAL": "fast",
		"CLASSCHAT_HTTP_TIMEOUT":  "-1s",
		"CLASSCHAT_PAGE_SIZE":     "0",
		"CLASSCHAT_LOG_LEVEL":     "loud",
	} {
		_, err := FromEnv(envMap(map[string]string{key: value}))
		assert.Error(t, err, key)
		if err != nil {
			assert.Contains(t, err.Error(), key)
		}
	}

	_, err := FromEnv(envMap(map[string]string{"CLASSCHAT_POLL_INTERVAL": "10ms"}))
	assert.Error(t, err)
}
