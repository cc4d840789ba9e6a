package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/DoyleJ11/board-sync/internal/persist"
	"github.com/DoyleJ11/board-sync/internal/translate"
)

type Config struct {
	Addr     string
	AppEnv   string
	LogLevel string

	// OpenAI - translation is disabled if the key is empty
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	DataDir      string
	SaveDebounce time.Duration
	Storage      persist.Options

	// extra websocket origins, comma separated
	AllowedOrigins []string
}

// Load reads the environment. Variables already set win over a .env file.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit dotenv file; a missing file is an error.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, err
	}
	return fromEnv(), nil
}

func fromEnv() Config {
	dataDir := getenv("DATA_DIR", "./data")
	return Config{
		Addr:          ":" + getenv("PORT", "3000"),
		AppEnv:        getenv("APP_ENV", "production"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		OpenAIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("OPENAI_TRANSLATION_MODEL", getenv("OPENAI_MODEL", translate.DefaultModel)),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", ""),
		DataDir:       dataDir,
		SaveDebounce:  time.Duration(getenvInt("SAVE_DEBOUNCE_MS", 150)) * time.Millisecond,
		Storage: persist.Options{
			Backend:     getenv("STORAGE_BACKEND", persist.BackendFile),
			File:        getenv("DATA_FILE", filepath.Join(dataDir, "tasks.json")),
			RedisURL:    getenv("REDIS_URL", "redis://localhost:6379/0"),
			RedisKey:    getenv("REDIS_KEY", ""),
			DatabaseURL: getenv("DATABASE_URL", ""),
			S3Endpoint:  getenv("S3_ENDPOINT", ""),
			S3AccessKey: getenv("S3_ACCESS_KEY", ""),
			S3SecretKey: getenv("S3_SECRET_KEY", ""),
			S3Bucket:    getenv("S3_BUCKET", "board"),
			S3Object:    getenv("S3_OBJECT", persist.DefaultObjectName),
			S3UseSSL:    getenvBool("S3_USE_SSL", false),
		},
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "")),
	}
}

func (c Config) Development() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
