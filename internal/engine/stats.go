package engine

import (
	"fmt"
	"strings"
	"time"

	"ski-training-bot/internal/models"
	"ski-training-bot/internal/utils"
)

// RecentLimit — сколько последних тренировок показывать в статистике
const RecentLimit = 10

// BuildStats считает агрегаты по списку тренировок.
// Скользящие окна считаются от текущей даты и включают граничную дату.
func BuildStats(records []models.TrainingRecord, now time.Time) models.Stats {
	today := utils.DateOnly(now)
	weekFrom := today.AddDate(0, 0, -7)
	monthFrom := today.AddDate(0, 0, -30)

	var st models.Stats
	for _, r := range records {
		d := utils.DateOnly(r.Date)
		st.TotalKm += r.DistanceKm
		if !d.Before(weekFrom) {
			st.WeekKm += r.DistanceKm
		}
		if !d.Before(monthFrom) {
			st.MonthKm += r.DistanceKm
		}
	}

	n := len(records)
	if n > RecentLimit {
		n = RecentLimit
	}
	st.Recent = make([]models.TrainingRecord, n)
	copy(st.Recent, records[:n])
	return st
}

// FormatStats строит текст статистики для отправки пользователю
func FormatStats(st models.Stats) string {
	if len(st.Recent) == 0 {
		return msgNoRecords
	}

	var b strings.Builder
	b.WriteString("📊 Статистика тренировок\n\n")
	fmt.Fprintf(&b, "Всего: %s км\n", formatKm(st.TotalKm))
	fmt.Fprintf(&b, "За 7 дней: %s км\n", formatKm(st.WeekKm))
	fmt.Fprintf(&b, "За 30 дней: %s км\n", formatKm(st.MonthKm))

	b.WriteString("\nПоследние тренировки:\n")
	for _, r := range st.Recent {
		fmt.Fprintf(&b, "• %s — %s км (%s)", utils.FormatDate(r.Date), formatKm(r.DistanceKm), r.TimeSlot.Label())
		if r.Comment != nil {
			fmt.Fprintf(&b, " — %s", *r.Comment)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
