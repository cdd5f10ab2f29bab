package database

import (
	"context"

	"ski-training-bot/internal/models"
)

// Store определяет операции хранилища тренировок.
// Записи тренировок только добавляются; обновляется лишь локация пользователя.
type Store interface {
	// EnsureUser создает пользователя, если его еще нет
	EnsureUser(ctx context.Context, userID int64) error

	// GetUser возвращает пользователя или nil, если он не найден
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// ListUsers возвращает всех известных пользователей
	ListUsers(ctx context.Context) ([]models.User, error)

	// UpsertLocation перезаписывает локацию пользователя (last-write-wins)
	UpsertLocation(ctx context.Context, userID int64, lat, lon float64) error

	// InsertRecord добавляет тренировку и возвращает присвоенный id
	InsertRecord(ctx context.Context, rec *models.TrainingRecord) (int64, error)

	// ListRecords возвращает тренировки пользователя, новые первыми
	ListRecords(ctx context.Context, userID int64) ([]models.TrainingRecord, error)

	Close() error
}
