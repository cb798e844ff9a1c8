package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// MissingKeyError reports a required credential that was not configured.
// It is fatal at agent construction.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s not set", e.Key)
}

// Config holds all environment-driven settings.
type Config struct {
	// Language model
	GeminiAPIKey string
	GeminiModel  string

	// Side channel (AMQP)
	AMQPURL      string
	AMQPExchange string
	CardTopic    string

	// Data
	DataPath        string
	CredentialsFile string

	// Session
	UserID string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. Missing optional values fall back to defaults.
func Load() *Config {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	return &Config{
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "coach"),
		CardTopic:    getEnv("CARD_TOPIC", "financial_card"),

		DataPath:        getEnv("TRANSACTIONS_PATH", ""),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),

		UserID: getEnv("COACH_USER_ID", "default_user"),
	}
}

// RequireGeminiKey fails when the language-model credential is absent.
func (c *Config) RequireGeminiKey() error {
	if c.GeminiAPIKey == "" {
		return &MissingKeyError{Key: "GEMINI_API_KEY"}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
