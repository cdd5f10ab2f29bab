package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout — единственный принимаемый формат даты тренировки
const DateLayout = "2006-01-02"

var (
	// ErrBadDate возвращается, если дата не соответствует формату DateLayout
	ErrBadDate = errors.New("invalid date format")
	// ErrBadDistance возвращается для нечисловой или неположительной дистанции
	ErrBadDistance = errors.New("distance must be a positive number")
)

// ParseDate разбирает дату в каноническом формате YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ParseDistance разбирает дистанцию в километрах.
// Допускает и точку, и запятую как десятичный разделитель.
func ParseDistance(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrBadDistance
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrBadDistance
	}
	return v, nil
}

// DateOnly обнуляет время, оставляя только календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay сравнивает два момента времени как календарные даты
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// FormatDate форматирует дату в канонический вид YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
