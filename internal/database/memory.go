package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"ski-training-bot/internal/models"
)

// Memory — потокобезопасное хранилище в памяти.
// Используется в тестах и как запасной вариант без DATABASE_URL.
type Memory struct {
	mu      sync.RWMutex
	users   map[int64]*models.User
	records map[int64][]models.TrainingRecord
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[int64]*models.User),
		records: make(map[int64][]models.TrainingRecord),
		nextID:  1,
	}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) EnsureUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[userID]; !exists {
		m.users[userID] = &models.User{ID: userID, CreatedAt: time.Now()}
	}
	return nil
}

func (m *Memory) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, exists := m.users[userID]
	if !exists {
		return nil, nil
	}
	cp := *u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		if u.Location != nil {
			loc := *u.Location
			cp.Location = &loc
		}
		users = append(users, cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) UpsertLocation(ctx context.Context, userID int64, lat, lon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, exists := m.users[userID]
	if !exists {
		u = &models.User{ID: userID, CreatedAt: time.Now()}
		m.users[userID] = u
	}
	// Всегда перезаписываем, история не хранится
	u.Location = &models.Location{Latitude: lat, Longitude: lon}
	return nil
}

func (m *Memory) InsertRecord(ctx context.Context, rec *models.TrainingRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = m.nextID
	m.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.records[rec.UserID] = append(m.records[rec.UserID], stored)
	rec.ID = stored.ID
	return stored.ID, nil
}

func (m *Memory) ListRecords(ctx context.Context, userID int64) ([]models.TrainingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.records[userID]
	records := make([]models.TrainingRecord, len(src))
	copy(records, src)

	// Новые первыми: по дате, затем по id
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}
