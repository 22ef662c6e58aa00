package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 12, cfg.Game.WinningScore)
	assert.Equal(t, 3*time.Second, cfg.Game.HandDelay)
	assert.Equal(t, 12*time.Hour, cfg.Redis.RoomTTL)
	assert.Equal(t, "truco", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.NATS.URL)
	assert.Zero(t, cfg.Server.WriteTimeout)
	assert.Zero(t, cfg.Game.ShuffleSeed)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truco.yaml")
	content := `
server:
  port: 9090
storage:
  type: redis
redis:
  url: redis://cache:6379/1
game:
  hand_delay: 500ms
  winning_score: 15
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.HandDelay)
	assert.Equal(t, 15, cfg.Game.WinningScore)
	assert.Equal(t, 10, cfg.Redis.PoolSize)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truco.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("TRUCO_SERVER_PORT", "7070")
	t.Setenv("TRUCO_NATS_URL", "nats://bus:4222")
	t.Setenv("TRUCO_GAME_HAND_DELAY", "1s")
	t.Setenv("TRUCO_GAME_SHUFFLE_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "nats://bus:4222", cfg.NATS.URL)
	assert.Equal(t, time.Second, cfg.Game.HandDelay)
	assert.Equal(t, uint64(42), cfg.Game.ShuffleSeed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "storage type", env: map[string]string{"TRUCO_STORAGE_TYPE": "postgres"}},
		{name: "log level", env: map[string]string{"TRUCO_LOG_LEVEL": "loud"}},
		{name: "port", env: map[string]string{"TRUCO_SERVER_PORT": "0"}},
		{name: "winning score", env: map[string]string{"TRUCO_GAME_WINNING_SCORE": "-1"}},
		{name: "sweep interval", env: map[string]string{"TRUCO_GAME_SWEEP_INTERVAL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
