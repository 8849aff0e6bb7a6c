package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	// StorageBackend selects the persistence layer: "json" (flat files
	// under DataDir) or "sqlite" (local mode).
	StorageBackend string
	DataDir        string
	SQLitePath     string

	// AIProvider selects the response generator: "simulated" or "gemini".
	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	LogLevel string
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", "json"),
		DataDir:        getEnv("DATA_DIR", "data"),
		SQLitePath:     getEnv("SQLITE_PATH", "chatboot.db"),
		AIProvider:     getEnv("AI_PROVIDER", "simulated"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTimeout:  time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
	}

	if cfg.AIProvider == "gemini" && cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required when AI_PROVIDER=gemini")
	}
	return cfg
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
