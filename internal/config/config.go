package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Chat   ChatConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ChatConfig struct {
	// HistoryLimit caps the number of messages retained per room.
	HistoryLimit int
	// MaxFrameBytes caps a single inbound websocket frame. Sized to admit an
	// image data-URI with room to spare.
	MaxFrameBytes int64
	// MaxImageBytes is the client-side ceiling on an outgoing image payload.
	MaxImageBytes int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", ":3000"),
			ReadTimeout:  getDurationOrDefault("READ_TIMEOUT", "15s"),
			WriteTimeout: getDurationOrDefault("WRITE_TIMEOUT", "15s"),
		},
		Chat: ChatConfig{
			HistoryLimit:  getIntOrDefault("HISTORY_LIMIT", 100),
			MaxFrameBytes: int64(getIntOrDefault("MAX_FRAME_BYTES", 2<<20)),
			MaxImageBytes: getIntOrDefault("MAX_IMAGE_BYTES", 512<<10),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return intValue
}
