// Package config loads runtime configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Data
	SeedFile string // empty means the embedded fixtures

	// Auth
	AdminName   string
	AdminSecret string
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int

	// Playlist generation
	GeminiAPIKey    string
	GeminiModel     string
	OllamaURL       string // empty disables the local backend
	OllamaModel     string
	GenerateTimeout time.Duration

	// Logging
	LogFormat string // json or console
	LogLevel  string
}

// LoadDotEnv reads a .env file into the environment when one exists.
// Variables already set are left alone.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("CADENCE_PORT", 8080),

		SeedFile: envStr("CADENCE_SEED_FILE", ""),

		AdminName:   envStr("CADENCE_ADMIN_NAME", "matt"),
		AdminSecret: envStr("CADENCE_ADMIN_SECRET", "2406"),
		JWTSecret:   envStr("CADENCE_JWT_SECRET", ""),
		TokenTTL:    time.Duration(envInt("CADENCE_TOKEN_TTL", 24)) * time.Hour,
		BcryptCost:  envInt("CADENCE_BCRYPT_COST", 10),

		GeminiAPIKey:    envStr("GEMINI_API_KEY", envStr("API_KEY", "")),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaURL:       envStr("OLLAMA_URL", ""),
		OllamaModel:     envStr("OLLAMA_MODEL", "qwen3:8b"),
		GenerateTimeout: time.Duration(envInt("CADENCE_GENERATE_TIMEOUT", 30)) * time.Second,

		LogFormat: strings.ToLower(envStr("CADENCE_LOG_FORMAT", "json")),
		LogLevel:  strings.ToLower(envStr("CADENCE_LOG_LEVEL", "info")),
	}
}

// SigningKey returns the JWT secret, or a random one when none is configured.
// A random key invalidates every token on restart.
func (c Config) SigningKey() []byte {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret)
	}
	buf := make([]byte, 32)
	rand.Read(buf)
	return []byte(hex.EncodeToString(buf))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
