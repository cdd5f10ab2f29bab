package engine

import "ski-training-bot/internal/models"

const (
	btnLogToday = "Записать тренировку сегодня"
	btnLogOther = "Записать за другую дату"
	btnStats    = "Статистика"
	btnLocation = "Изменить локацию"
	btnShareLoc = "Отправить локацию"
	btnSkip     = "Пропустить"
	btnRetry    = "Повторить"

	cbSlotPrefix = "slot:"
	cbSkip       = "skip"
	cbRetry      = "retry_save"
)

const (
	msgGreeting = "Привет! Я бот для учёта лыжных и беговых тренировок. 🎿\n" +
		"Выберите действие в меню."
	msgHelp = "Я записываю тренировки и показываю статистику.\n\n" +
		"«Записать тренировку сегодня» — записать сегодняшнюю тренировку\n" +
		"«Записать за другую дату» — записать тренировку задним числом\n" +
		"«Статистика» — дистанция за неделю, месяц и всё время\n" +
		"«Изменить локацию» — обновить локацию для прогноза погоды"
	msgAskLocationFirst = "Чтобы прикреплять погоду к тренировкам, отправьте свою локацию."
	msgAskLocation      = "Отправьте новую локацию через кнопку ниже."
	msgLocationRetry    = "Пожалуйста, отправьте локацию через скрепку 📎 → Локация"
	msgLocationSaved    = "Локация сохранена: %.4f, %.4f"
	msgAskDate          = "Введите дату тренировки в формате ГГГГ-ММ-ДД, например 2026-01-15."
	msgDateFormat       = "Не понял дату. Нужен формат ГГГГ-ММ-ДД, например 2026-01-15."
	msgChooseSlot       = "В какое время суток была тренировка?"
	msgAskDistance      = "Введите дистанцию в километрах, например 12.5."
	msgDistanceInvalid  = "Дистанция должна быть положительным числом, например 12.5 или 10,5."
	msgAskComment       = "Добавьте комментарий к тренировке или нажмите «Пропустить»."
	msgSaveFailed       = "⚠️ Не удалось сохранить тренировку. Данные не потеряны — нажмите «Повторить»."
	msgRetryHint        = "Тренировка ещё не сохранена. Нажмите «Повторить», чтобы попробовать снова."
	msgStorageError     = "⚠️ Ошибка хранилища. Попробуйте позже."
	msgUnknown          = "Используйте меню или отправьте /start."
	msgNoRecords        = "Пока нет записанных тренировок. Начните с кнопки «Записать тренировку сегодня»!"
)

func mainMenuKeyboard() *Keyboard {
	return &Keyboard{Buttons: [][]Button{
		{{Label: btnLogToday}},
		{{Label: btnLogOther}},
		{{Label: btnStats}, {Label: btnLocation}},
	}}
}

func locationKeyboard() *Keyboard {
	return &Keyboard{Buttons: [][]Button{
		{{Label: btnShareLoc, RequestLocation: true}},
	}}
}

func slotKeyboard() *Keyboard {
	row := make([]Button, 0, len(models.TimeSlots))
	for _, s := range models.TimeSlots {
		row = append(row, Button{Label: s.Label(), Data: cbSlotPrefix + string(s)})
	}
	return &Keyboard{Inline: true, Buttons: [][]Button{row}}
}

func skipKeyboard() *Keyboard {
	return &Keyboard{Inline: true, Buttons: [][]Button{{{Label: btnSkip, Data: cbSkip}}}}
}

func retryKeyboard() *Keyboard {
	return &Keyboard{Inline: true, Buttons: [][]Button{{{Label: btnRetry, Data: cbRetry}}}}
}
