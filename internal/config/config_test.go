package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.Quiz.QuestionCount)
	assert.Equal(t, 1, cfg.Wizard.QuizPages)
	assert.Equal(t, 3, cfg.Wizard.RowWidth)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8081"
  mode: debug
database:
  driver: sqlite
  path: test.db
ai:
  provider: openai
  timeout: 5s
wizard:
  quiz_pages: 5
storage:
  type: minio
`)
	t.Setenv("GEMINI_API_KEY", "k1, k2 ,,k3")
	t.Setenv("LEARNO_QUIZ_QUESTION_COUNT", "4")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5, cfg.Wizard.QuizPages)
	assert.Equal(t, 4, cfg.Quiz.QuestionCount)
	assert.Equal(t, []string{"k1", "k2", "k3"}, cfg.AI.Gemini.APIKeys)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "ai:\n  provider: llama\nstorage:\n  type: minio\n"},
		{"unknown driver", "database:\n  driver: oracle\nstorage:\n  type: minio\n"},
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: short\nstorage:\n  type: minio\n"},
		{"zero quiz pages", "wizard:\n  quiz_pages: 0\nstorage:\n  type: minio\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
