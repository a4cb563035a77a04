package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_PREFIX", "!adventure")
	t.Setenv("DISCORD_BOT_ID", "bot-1")
	t.Setenv("AI_MODEL", "chat-model")
	t.Setenv("AI_SUMMARY_MODEL", "summary-model")
	t.Setenv("AI_PERSONALITY", "You are the tavern keeper.")
	t.Setenv("AI_SUMMARY_PREFIX", "You condense adventure logs.")
	t.Setenv("DB_HOST", "localhost:3306")
	t.Setenv("DB_USER", "bot")
	t.Setenv("DB_NAME", "adventures")
}

func TestFromEnv_HappyPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_TOKENS", "250")
	t.Setenv("HISTORY_WINDOW", "6")
	t.Setenv("AI_URL", "https://example.test/v1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "!adventure", cfg.Prefix)
	require.Equal(t, "bot-1", cfg.BotID)
	require.Equal(t, 250, cfg.MaxTokens)
	require.Equal(t, 6, cfg.HistoryWindow)
	require.Equal(t, "https://example.test/v1", cfg.AIBaseURL)
	require.Equal(t, "adventures", cfg.DBName)
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.MaxTokens)
	require.Equal(t, 10, cfg.HistoryWindow)
	require.Empty(t, cfg.AIBaseURL)
	require.Empty(t, cfg.ParamPrefix)
}

func TestFromEnv_MissingRequiredKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_MODEL", "")

	_, err := FromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AI_MODEL")
}

func TestFromEnv_MalformedIntFallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_TOKENS", "lots")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.MaxTokens)
}
