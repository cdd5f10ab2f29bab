package bot

import (
	"context"
	"testing"
	"time"

	"ski-training-bot/internal/engine"
	"ski-training-bot/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func msgUpdate(msg *tgbotapi.Message) tgbotapi.Update {
	return tgbotapi.Update{Message: msg}
}

func TestDecodeUpdate(t *testing.T) {
	from := &tgbotapi.User{ID: 42}
	chat := &tgbotapi.Chat{ID: 100}

	// Тест 1: команда
	userID, chatID, ev, ok := decodeUpdate(msgUpdate(&tgbotapi.Message{
		From: from, Chat: chat, Text: "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}))
	if !ok || ev.Kind != engine.EventCommand || ev.Command != "start" {
		t.Errorf("Expected command event, got %+v (ok %v)", ev, ok)
	}
	if userID != 42 || chatID != 100 {
		t.Errorf("Unexpected ids: user %d chat %d", userID, chatID)
	}

	// Тест 2: обычный текст
	_, _, ev, ok = decodeUpdate(msgUpdate(&tgbotapi.Message{
		From: from, Chat: chat, Text: "12.5",
	}))
	if !ok || ev.Kind != engine.EventText || ev.Text != "12.5" {
		t.Errorf("Expected text event, got %+v (ok %v)", ev, ok)
	}

	// Тест 3: локация имеет приоритет над текстом
	_, _, ev, ok = decodeUpdate(msgUpdate(&tgbotapi.Message{
		From: from, Chat: chat, Text: "точка",
		Location: &tgbotapi.Location{Latitude: 46.5, Longitude: 11.3},
	}))
	if !ok || ev.Kind != engine.EventLocation {
		t.Fatalf("Expected location event, got %+v (ok %v)", ev, ok)
	}
	if ev.Latitude != 46.5 || ev.Longitude != 11.3 {
		t.Errorf("Unexpected coordinates: %v, %v", ev.Latitude, ev.Longitude)
	}

	// Тест 4: нажатие inline-кнопки
	userID, chatID, ev, ok = decodeUpdate(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb1",
			From:    from,
			Data:    "slot:morning",
			Message: &tgbotapi.Message{Chat: chat},
		},
	})
	if !ok || ev.Kind != engine.EventCallback || ev.Data != "slot:morning" {
		t.Errorf("Expected callback event, got %+v (ok %v)", ev, ok)
	}
	if userID != 42 || chatID != 100 {
		t.Errorf("Unexpected ids: user %d chat %d", userID, chatID)
	}

	// Тест 5: пустое и неподдерживаемое содержимое отбрасывается,
	// неполные сообщения не должны ронять процесс
	for i, update := range []tgbotapi.Update{
		{},
		msgUpdate(&tgbotapi.Message{Chat: chat, Text: "без отправителя"}),
		msgUpdate(&tgbotapi.Message{From: from, Text: "без чата"}),
		msgUpdate(&tgbotapi.Message{From: from, Chat: chat}),
		{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb2", Data: "x"}},
		{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb3", From: from, Data: "x", Message: &tgbotapi.Message{}}},
	} {
		if _, _, _, ok := decodeUpdate(update); ok {
			t.Errorf("Expected update %d to be dropped", i)
		}
	}
}

func TestConsumeStopsPollingOnCancel(t *testing.T) {
	b := &Bot{log: logger.New("error")}
	updates := make(tgbotapi.UpdatesChannel)

	stopped := false
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		done <- b.consume(ctx, updates, func() { stopped = true })
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consume did not return after context cancellation")
	}
	if !stopped {
		t.Error("Expected long polling to be stopped on shutdown")
	}
}

func TestKeyboardMarkup(t *testing.T) {
	// Тест 1: inline-клавиатура переносит подписи и данные
	inline := inlineMarkup(&engine.Keyboard{Inline: true, Buttons: [][]engine.Button{
		{{Label: "Утро", Data: "slot:morning"}, {Label: "День", Data: "slot:day"}},
	}})
	if len(inline.InlineKeyboard) != 1 || len(inline.InlineKeyboard[0]) != 2 {
		t.Fatalf("Unexpected inline layout: %+v", inline.InlineKeyboard)
	}
	btn := inline.InlineKeyboard[0][0]
	if btn.Text != "Утро" || btn.CallbackData == nil || *btn.CallbackData != "slot:morning" {
		t.Errorf("Unexpected inline button: %+v", btn)
	}

	// Тест 2: reply-клавиатура с запросом локации
	markup := replyMarkup(&engine.Keyboard{Buttons: [][]engine.Button{
		{{Label: "Отправить локацию", RequestLocation: true}},
		{{Label: "Статистика"}},
	}})
	if len(markup.Keyboard) != 2 {
		t.Fatalf("Unexpected reply layout: %+v", markup.Keyboard)
	}
	if !markup.Keyboard[0][0].RequestLocation {
		t.Error("Expected location request on the first button")
	}
	if markup.Keyboard[1][0].RequestLocation {
		t.Error("Plain button must not request location")
	}
}
