package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the process configuration, read from the environment once at
// startup. The two secrets (bot token, completion API key) are resolved
// separately through a paramstore Getter so they can come from either the
// environment or SSM.
type Config struct {
	// Chat platform.
	Prefix string // command prefix that starts a new adventure
	BotID  string // the bot's own account identifier

	// Completion service.
	AIBaseURL          string
	Model              string
	SummaryModel       string
	Persona            string
	SummaryInstruction string
	MaxTokens          int

	// Conversation policy.
	HistoryWindow int

	// State database.
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string

	// Optional SSM parameter prefix for secret resolution.
	ParamPrefix string
}

// Environment keys for the two secrets, resolved via paramstore.
const (
	EnvDiscordToken = "DISCORD_TOKEN"
	EnvAIAPIKey     = "AI_API_KEY"
)

// FromEnv reads and validates the configuration from the environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Prefix:             os.Getenv("DISCORD_PREFIX"),
		BotID:              os.Getenv("DISCORD_BOT_ID"),
		AIBaseURL:          os.Getenv("AI_URL"),
		Model:              os.Getenv("AI_MODEL"),
		SummaryModel:       os.Getenv("AI_SUMMARY_MODEL"),
		Persona:            os.Getenv("AI_PERSONALITY"),
		SummaryInstruction: os.Getenv("AI_SUMMARY_PREFIX"),
		MaxTokens:          envInt("AI_TOKENS", 500),
		HistoryWindow:      envInt("HISTORY_WINDOW", 10),
		DBHost:             os.Getenv("DB_HOST"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASS"),
		DBName:             os.Getenv("DB_NAME"),
		ParamPrefix:        os.Getenv("PARAM_PREFIX"),
	}

	required := []struct {
		key   string
		value string
	}{
		{"DISCORD_PREFIX", cfg.Prefix},
		{"DISCORD_BOT_ID", cfg.BotID},
		{"AI_MODEL", cfg.Model},
		{"AI_SUMMARY_MODEL", cfg.SummaryModel},
		{"AI_PERSONALITY", cfg.Persona},
		{"AI_SUMMARY_PREFIX", cfg.SummaryInstruction},
		{"DB_HOST", cfg.DBHost},
		{"DB_USER", cfg.DBUser},
		{"DB_NAME", cfg.DBName},
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, fmt.Errorf("config: %s is required", r.key)
		}
	}
	return cfg, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
