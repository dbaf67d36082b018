package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Converter ConverterConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxUploadMB  int
	AllowOrigins []string
}

type ConverterConfig struct {
	// DefaultBank is used when a request or CLI call names no bank.
	DefaultBank string
	// PdftotextFallback enables the poppler pdftotext fallback extractor.
	PdftotextFallback bool
}

type LoggerConfig struct {
	Level string
	// Format is "json" or "console".
	Format string
}

// Local development origins allowed by default.
var defaultOrigins = []string{
	"http://127.0.0.1:8000",
	"http://localhost:8000",
	"http://127.0.0.1:3000",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://localhost:5173",
	"http://127.0.0.1:5500",
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 30)
	maxUpload := getEnvInt("MAX_UPLOAD_MB", 32)

	origins := defaultOrigins
	if v := getEnv("CORS_ALLOW_ORIGINS", ""); v != "" {
		origins = splitList(v)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			MaxUploadMB:  maxUpload,
			AllowOrigins: origins,
		},
		Converter: ConverterConfig{
			DefaultBank:       getEnv("DEFAULT_BANK_FORMAT", "kotak"),
			PdftotextFallback: getEnv("PDFTOTEXT_FALLBACK", "true") == "true",
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue for unset, unparsable or
// non-positive values; a zero timeout would disable it.
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
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
