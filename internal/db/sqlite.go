package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spacesedan/reviewlens/internal/models"
)

type SQLiteStore struct {
	DB *gorm.DB
}

// NewSQLiteStore opens the sqlite database at path (":memory:" for tests).
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite connection pool: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases shared
	sqlDB.SetMaxOpenConns(1)

	slog.Info("[ReviewStore] Connected to SQLite", slog.String("path", path))
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&models.Review{})
}

func (s *SQLiteStore) InsertMany(ctx context.Context, records []models.Review) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if err := prepareForInsert(&records[i]); err != nil {
			return err
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&records, len(records)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert reviews: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, record *models.Review) error {
	if err := prepareForInsert(record); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Review{}).Count(&count).Error
	return count, err
}

func (s *SQLiteStore) CountBySentiment(ctx context.Context, sentiment models.Sentiment) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Where("sentiment = ?", string(sentiment)).
		Count(&count).Error
	return count, err
}

func (s *SQLiteStore) AverageConfidence(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(confidence)").
		Row().
		Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (s *SQLiteStore) TopBySentiment(ctx context.Context, sentiment models.Sentiment, n int) ([]models.Review, error) {
	reviews := make([]models.Review, 0, n)
	if n <= 0 {
		return reviews, nil
	}
	err := s.DB.WithContext(ctx).
		Where("sentiment = ?", string(sentiment)).
		Order("confidence DESC").
		Order("id ASC").
		Limit(n).
		Find(&reviews).Error
	return reviews, err
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]models.Review, error) {
	if limit <= 0 {
		return []models.Review{}, nil
	}
	reviews := make([]models.Review, 0, limit)
	err := s.DB.WithContext(ctx).Order("id ASC").Limit(limit).Find(&reviews).Error
	return reviews, err
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
