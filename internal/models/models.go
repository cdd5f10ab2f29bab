package models

import "time"

// Location представляет последнюю известную геопозицию пользователя.
// История не хранится, каждое новое значение перезаписывает старое.
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// User представляет пользователя бота
type User struct {
	ID        int64     `json:"id" db:"id"`
	Location  *Location `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TimeSlot — часть дня, в которую прошла тренировка
type TimeSlot string

const (
	SlotMorning TimeSlot = "morning"
	SlotDay     TimeSlot = "day"
	SlotEvening TimeSlot = "evening"
	SlotNight   TimeSlot = "night"
)

// TimeSlots задаёт порядок отображения слотов в меню
var TimeSlots = []TimeSlot{SlotMorning, SlotDay, SlotEvening, SlotNight}

var slotLabels = map[TimeSlot]string{
	SlotMorning: "Утро",
	SlotDay:     "День",
	SlotEvening: "Вечер",
	SlotNight:   "Ночь",
}

// Label возвращает отображаемое название слота
func (s TimeSlot) Label() string {
	if l, ok := slotLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseTimeSlot проверяет, что значение входит в допустимый набор слотов
func ParseTimeSlot(v string) (TimeSlot, bool) {
	s := TimeSlot(v)
	_, ok := slotLabels[s]
	return s, ok
}

// TrainingRecord представляет одну завершённую тренировку.
// Записи только добавляются: обновление и удаление не поддерживаются.
type TrainingRecord struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Date       time.Time `json:"run_date" db:"run_date"` // календарная дата без времени
	TimeSlot   TimeSlot  `json:"time_range" db:"time_range"`
	DistanceKm float64   `json:"distance" db:"distance"`
	Weather    *string   `json:"weather,omitempty" db:"weather"` // nil — погода недоступна
	Comment    *string   `json:"comment,omitempty" db:"comment"` // nil — без комментария
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// State — состояние диалога пользователя
type State int

const (
	StateIdle State = iota
	StateAwaitingLocation
	StateSelectingDate
	StateSelectingTimeSlot
	StateEnteringDistance
	StateEnteringComment
	StateCommitFailed
)

// Stats — агрегированная статистика тренировок пользователя
type Stats struct {
	TotalKm float64
	WeekKm  float64
	MonthKm float64
	Recent  []TrainingRecord
}
