package main

import (
	"fmt"
	"log"

	"ski-training-bot/internal/config"
	"ski-training-bot/internal/database"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for migrations")
	}

	// Подключаемся к базе данных
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🚀 Starting database migrations...")

	// Создаем схему и применяем миграции
	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("✅ All migrations completed successfully!")
}
