package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/academic-feed/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvRecord - строка таблицы kv_entries.
type kvRecord struct {
	KeyName   string `gorm:"primaryKey;size:255"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string { return "kv_entries" }

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var rec kvRecord
	if err := s.db.WithContext(ctx).First(&rec, "key_name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rec.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	rec := kvRecord{KeyName: key, Value: value, UpdatedAt: time.Now()}
	// Upsert: при конфликте по ключу перезаписываем значение
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&kvRecord{}, "key_name = ?", key).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
