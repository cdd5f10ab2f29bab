package bot

import (
	"context"
	"fmt"

	"ski-training-bot/internal/config"
	"ski-training-bot/internal/engine"
	"ski-training-bot/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot — адаптер между Telegram и движком диалога. Вся специфика
// Telegram (Update, клавиатуры, webhook) остается в этом пакете.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	log    logger.Logger
	config *config.Config
}

func New(cfg *config.Config, eng *engine.Engine, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.APIToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:    api,
		engine: eng,
		log:    log,
		config: cfg,
	}, nil
}

// Token возвращает токен бота для маршрута webhook
func (b *Bot) Token() string {
	return b.api.Token
}

// Start запускает long polling до отмены контекста
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("Starting bot...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	return b.consume(ctx, b.api.GetUpdatesChan(u), b.api.StopReceivingUpdates)
}

// consume читает обновления до отмены контекста, затем останавливает
// long polling через stop
func (b *Bot) consume(ctx context.Context, updates tgbotapi.UpdatesChannel, stop func()) error {
	for {
		select {
		case update := <-updates:
			go b.HandleUpdate(ctx, update)
		case <-ctx.Done():
			stop()
			b.log.Info("Bot stopped")
			return nil
		}
	}
}

// RegisterWebhook регистрирует webhook у Telegram
func (b *Bot) RegisterWebhook(host string) error {
	wh, err := tgbotapi.NewWebhook("https://" + host + "/webhook/" + b.api.Token)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	b.log.Infof("Webhook registered for host %s", host)
	return nil
}

// HandleUpdate декодирует обновление и передает его движку диалога
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	userID, chatID, ev, ok := decodeUpdate(update)
	if !ok {
		return
	}

	// Снимаем «часики» с нажатой кнопки
	if update.CallbackQuery != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.log.Debugf("Failed to answer callback: %v", err)
		}
	}

	for _, reply := range b.engine.Handle(ctx, userID, ev) {
		if err := b.send(chatID, reply); err != nil {
			b.log.Errorf("Failed to send reply to %d: %v", chatID, err)
		}
	}
}

// SendText отправляет произвольный текст (используется планировщиком)
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// decodeUpdate сводит Update к компактному событию движка.
// Обновления без поддерживаемого содержимого отбрасываются на границе.
func decodeUpdate(update tgbotapi.Update) (userID, chatID int64, ev engine.Event, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return 0, 0, engine.Event{}, false
		}
		return cq.From.ID, cq.Message.Chat.ID, engine.Event{Kind: engine.EventCallback, Data: cq.Data}, true

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return 0, 0, engine.Event{}, false
		}
		switch {
		case msg.Location != nil:
			return msg.From.ID, msg.Chat.ID, engine.Event{
				Kind:      engine.EventLocation,
				Latitude:  msg.Location.Latitude,
				Longitude: msg.Location.Longitude,
			}, true
		case msg.IsCommand():
			return msg.From.ID, msg.Chat.ID, engine.Event{Kind: engine.EventCommand, Command: msg.Command()}, true
		case msg.Text != "":
			return msg.From.ID, msg.Chat.ID, engine.Event{Kind: engine.EventText, Text: msg.Text}, true
		}
	}
	return 0, 0, engine.Event{}, false
}

func (b *Bot) send(chatID int64, reply engine.Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if kb := reply.Keyboard; kb != nil {
		if kb.Inline {
			msg.ReplyMarkup = inlineMarkup(kb)
		} else {
			msg.ReplyMarkup = replyMarkup(kb)
		}
	}
	_, err := b.api.Send(msg)
	return err
}

func inlineMarkup(kb *engine.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Buttons))
	for _, row := range kb.Buttons {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func replyMarkup(kb *engine.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Buttons))
	for _, row := range kb.Buttons {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.RequestLocation {
				btns = append(btns, tgbotapi.NewKeyboardButtonLocation(btn.Label))
			} else {
				btns = append(btns, tgbotapi.NewKeyboardButton(btn.Label))
			}
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
