package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {

	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Google.BaseURL)
	assert.Equal(t, "https://api.openai.com", cfg.OpenAI.BaseURL)
	assert.Equal(t, 200, cfg.History.Size)
}

func TestLoadConfig_APIKeyResolution(t *testing.T) {
	os.Clearenv()
	t.Setenv("GOOGLE_API_KEY", "g-key-12345")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "g-key-12345", cfg.Google.APIKey)
	// No OPENAI_API_KEY in the environment: resolves to empty, not ENV:...
	assert.Equal(t, "", cfg.OpenAI.APIKey)
}

func TestLoadConfig_TimeoutOverride(t *testing.T) {
	os.Clearenv()
	t.Setenv("SERVER_REQUEST_TIMEOUT_SECONDS", "2")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, 2, cfg.Server.RequestTimeoutSeconds)
}
