package server

import (
	"context"
	"encoding/json"

	"ski-training-bot/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const indexPage = `<h2>🎿 Бот работает!</h2>
<p>Обновления Telegram принимаются на /webhook/&lt;token&gt;.</p>`

// UpdateHandler принимает декодированные обновления Telegram
type UpdateHandler interface {
	Token() string
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Server struct {
	app *fiber.App
	log logger.Logger
}

// New собирает HTTP-сервер: страница статуса, healthcheck и прием webhook
func New(h UpdateHandler, log logger.Logger) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(indexPage)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/webhook/:token", func(c *fiber.Ctx) error {
		// Чужие запросы отсекаем по токену в пути
		if c.Params("token") != h.Token() {
			return c.SendStatus(fiber.StatusForbidden)
		}

		var update tgbotapi.Update
		if err := json.Unmarshal(c.Body(), &update); err != nil {
			log.Warnf("Malformed webhook payload: %v", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}

		// Отвечаем Telegram сразу, обновление обрабатываем в фоне
		go h.HandleUpdate(context.Background(), update)
		return c.SendStatus(fiber.StatusOK)
	})

	return &Server{app: app, log: log}
}

func (s *Server) Listen(port string) error {
	s.log.Infof("HTTP server listening on :%s", port)
	return s.app.Listen(":" + port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
