package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
	require.Equal(t, "uploads", cfg.Uploads.UploadDir)
	require.Equal(t, "work", cfg.Uploads.WorkDir)
	require.Equal(t, 500, cfg.Uploads.MaxUploadMB)
	require.Equal(t, "whisper-cli", cfg.Whisper.Bin)
	require.Equal(t, 4, cfg.Whisper.Threads)
	require.Equal(t, "memory", cfg.Jobs.Store)
	require.Equal(t, 4, cfg.Jobs.MaxConcurrent)
	require.False(t, cfg.RemoteEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OPENROUTER_MODELS", "deepseek/deepseek-chat, qwen/qwen-2.5-72b ,")
	t.Setenv("XUNFEI_APP_ID", "app123")
	t.Setenv("XUNFEI_SECRET_KEY", "sek")
	t.Setenv("JOBS_STORE", "redis")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, []string{"deepseek/deepseek-chat", "qwen/qwen-2.5-72b"}, cfg.LLM.Models)
	require.True(t, cfg.RemoteEnabled())
	require.Equal(t, "redis", cfg.Jobs.Store)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	t.Setenv("JOBS_STORE", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}
