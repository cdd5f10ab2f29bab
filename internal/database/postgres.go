package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ski-training-bot/internal/models"

	_ "github.com/lib/pq"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Настраиваем пул соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// CreateTables создает таблицы в базе данных, если они не существуют
func (p *Postgres) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			run_date DATE NOT NULL,
			time_range TEXT NOT NULL,
			distance DOUBLE PRECISION NOT NULL CHECK (distance > 0),
			comment TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Запускаем миграции для обновления схемы
	if err := p.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// EnsureUser создает пользователя при первом обращении
func (p *Postgres) EnsureUser(ctx context.Context, userID int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, userID)
	return err
}

// GetUser возвращает пользователя или nil, если он не найден
func (p *Postgres) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	var lat, lon sql.NullFloat64

	err := p.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude, created_at
		FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &lat, &lon, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		u.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return &u, nil
}

// ListUsers возвращает всех известных пользователей
func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, created_at FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&u.ID, &lat, &lon, &u.CreatedAt); err != nil {
			return nil, err
		}
		if lat.Valid && lon.Valid {
			u.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpsertLocation перезаписывает локацию пользователя.
// Всегда last-write-wins, старое значение не сохраняется.
func (p *Postgres) UpsertLocation(ctx context.Context, userID int64, lat, lon float64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, latitude, longitude) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude
	`, userID, lat, lon)
	return err
}

// InsertRecord добавляет тренировку и возвращает присвоенный id
func (p *Postgres) InsertRecord(ctx context.Context, rec *models.TrainingRecord) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO runs (user_id, run_date, time_range, distance, weather, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rec.UserID, rec.Date, string(rec.TimeSlot), rec.DistanceKm, rec.Weather, rec.Comment).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ListRecords возвращает тренировки пользователя, новые первыми
func (p *Postgres) ListRecords(ctx context.Context, userID int64) ([]models.TrainingRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, run_date, time_range, distance, weather, comment, created_at
		FROM runs
		WHERE user_id = $1
		ORDER BY run_date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TrainingRecord
	for rows.Next() {
		var rec models.TrainingRecord
		var slot string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &slot, &rec.DistanceKm,
			&rec.Weather, &rec.Comment, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.TimeSlot = models.TimeSlot(slot)
		records = append(records, rec)
	}
	return records, rows.Err()
}
