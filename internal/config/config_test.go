package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds)
	assert.True(t, cfg.Features.RestoreHistory)
	assert.True(t, cfg.Features.HealthCheck)
	assert.NotEmpty(t, cfg.Storage.Dir)
	assert.NotEmpty(t, cfg.Log.File)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("DOCCHAT_BACKEND_BASE_URL", "https://pdf.example.com")
	t.Setenv("DOCCHAT_FEATURES_HEALTH_CHECK", "false")
	t.Setenv("DOCCHAT_CHAT_TYPING_DELAY_MS", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pdf.example.com", cfg.Backend.BaseURL)
	assert.False(t, cfg.Features.HealthCheck)
	assert.Equal(t, 100, cfg.Chat.TypingDelayMS)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{BaseURL: "", TimeoutSeconds: 30},
	}
	require.Error(t, validate(cfg))

	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.TimeoutSeconds = 0
	require.Error(t, validate(cfg))

	cfg.Backend.TimeoutSeconds = 30
	cfg.Chat.TypingDelayMS = -1
	require.Error(t, validate(cfg))

	cfg.Chat.TypingDelayMS = 0
	require.NoError(t, validate(cfg))
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{TimeoutSeconds: 30},
		Chat:    ChatConfig{TypingDelayMS: 400},
	}
	assert.Equal(t, "30s", cfg.RequestTimeout().String())
	assert.Equal(t, "400ms", cfg.TypingDelay().String())
}
