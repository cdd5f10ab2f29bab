package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIToken      string
	WeatherAPIKey string
	DatabaseURL   string
	WebhookHost   string
	Port          string
	LogLevel      string
}

func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	godotenv.Load()

	return &Config{
		APIToken:      getEnv("API_TOKEN", ""),
		WeatherAPIKey: getEnv("WEATHER_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		WebhookHost:   getEnv("WEBHOOK_HOST", ""),
		Port:          getEnv("PORT", "10000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
