package scheduler

import (
	"context"
	"fmt"
	"time"

	"ski-training-bot/internal/database"
	"ski-training-bot/internal/engine"
	"ski-training-bot/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// Sender отправляет сообщения пользователям вне диалога
type Sender interface {
	SendText(chatID int64, text string) error
}

// Start запускает еженедельную рассылку итогов: каждое воскресенье
// вечером пользователи с тренировками за неделю получают сводку
func Start(sender Sender, store database.Store, log logger.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob("0 18 * * 0", false),
		gocron.NewTask(func() {
			SendWeeklySummaries(context.Background(), sender, store, log)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// SendWeeklySummaries рассылает недельные итоги всем пользователям.
// Сбой у одного пользователя логируется и не прерывает обход.
func SendWeeklySummaries(ctx context.Context, sender Sender, store database.Store, log logger.Logger) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		log.Errorf("Failed to list users for weekly summary: %v", err)
		return
	}

	now := time.Now()
	for _, u := range users {
		records, err := store.ListRecords(ctx, u.ID)
		if err != nil {
			log.Errorf("Failed to list records for %d: %v", u.ID, err)
			continue
		}

		st := engine.BuildStats(records, now)
		if st.WeekKm == 0 {
			continue
		}

		text := fmt.Sprintf("🎿 Итоги недели: %.1f км. Так держать!", st.WeekKm)
		if err := sender.SendText(u.ID, text); err != nil {
			log.Errorf("Failed to send weekly summary to %d: %v", u.ID, err)
		}
	}
}
