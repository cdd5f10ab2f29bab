package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ski-training-bot/internal/bot"
	"ski-training-bot/internal/config"
	"ski-training-bot/internal/database"
	"ski-training-bot/internal/engine"
	"ski-training-bot/internal/logger"
	"ski-training-bot/internal/scheduler"
	"ski-training-bot/internal/server"
	"ski-training-bot/internal/weather"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализируем логгер
	logger := logger.New(cfg.LogLevel)

	// Подключаемся к хранилищу
	var store database.Store
	if cfg.DatabaseURL != "" {
		pg, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		if err := pg.CreateTables(); err != nil {
			logger.Fatalf("Failed to create tables: %v", err)
		}
		store = pg
	} else {
		logger.Warnf("DATABASE_URL is not set, using in-memory store")
		store = database.NewMemory()
	}
	defer store.Close()

	// Собираем движок диалога
	eng := engine.New(store, weather.NewClient(cfg.WeatherAPIKey), logger)

	// Создаем бота
	b, err := bot.New(cfg, eng, logger)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	// Еженедельная рассылка итогов
	sched, err := scheduler.Start(b, store, logger)
	if err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Shutdown()

	// Создаем контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WebhookHost != "" {
		// Режим webhook: Telegram шлет обновления на наш HTTP-сервер
		if err := b.RegisterWebhook(cfg.WebhookHost); err != nil {
			logger.Fatalf("Failed to register webhook: %v", err)
		}
		srv := server.New(b, logger)
		defer srv.Shutdown()
		go func() {
			if err := srv.Listen(cfg.Port); err != nil {
				logger.Errorf("HTTP server error: %v", err)
			}
		}()
	} else {
		// Режим long polling
		go func() {
			if err := b.Start(ctx); err != nil {
				logger.Errorf("Bot error: %v", err)
			}
		}()
	}

	// Ждем сигнала для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
}
