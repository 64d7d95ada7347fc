package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/moviedash-go/internal/config"
	"github.com/user/moviedash-go/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const movieBatchSize = 500

// SQLStore implements Store on top of gorm, backed by MySQL or SQLite
type SQLStore struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema
func Open(cfg *config.DBConfig) (*SQLStore, error) {
	var dialector gorm.Dialector
	maxConns := cfg.MaxConns
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
		// sqlite allows a single writer and every :memory: connection is its own database
		maxConns = 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxConns < 1 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns((maxConns + 1) / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.Movie{}, &model.Subscription{}, &model.DigestRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// ReplaceMovies replaces the movie mirror with the given records in one transaction
func (s *SQLStore) ReplaceMovies(ctx context.Context, movies []model.Movie) (int, error) {
	rows := make([]model.Movie, len(movies))
	copy(rows, movies)
	for i := range rows {
		rows[i].ID = 0
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Movie{}).Error; err != nil {
			return fmt.Errorf("failed to clear movies: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, movieBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save movies: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CountMovies returns the number of mirrored movies
func (s *SQLStore) CountMovies(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count movies: %w", result.Error)
	}
	return count, nil
}

// CreateSubscription creates a subscription. An identical subscription for the
// same chat is re-enabled instead, and sub receives its ID.
func (s *SQLStore) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	var existing model.Subscription
	result := s.db.WithContext(ctx).
		Where("chat_id = ? AND min_year = ? AND max_year = ? AND genres = ? AND genre_match = ?",
			sub.ChatID, sub.MinYear, sub.MaxYear, sub.Genres, sub.GenreMatch).
		First(&existing)

	if result.Error == nil {
		if err := s.db.WithContext(ctx).Model(&existing).Update("enabled", true).Error; err != nil {
			return fmt.Errorf("failed to enable subscription: %w", err)
		}
		sub.ID = existing.ID
		sub.Enabled = true
		sub.CreatedAt = existing.CreatedAt
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing subscription: %w", result.Error)
	}

	sub.Enabled = true
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// DeleteSubscription deletes one subscription of a chat, reporting whether it existed
func (s *SQLStore) DeleteSubscription(ctx context.Context, chatID int64, id uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND chat_id = ?", id, chatID).
		Delete(&model.Subscription{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllSubscriptions deletes all subscriptions for a chat
func (s *SQLStore) DeleteAllSubscriptions(ctx context.Context, chatID int64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&model.Subscription{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete all subscriptions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetSubscriptions retrieves the enabled subscriptions of a chat
func (s *SQLStore) GetSubscriptions(ctx context.Context, chatID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	result := s.db.WithContext(ctx).
		Where("chat_id = ? AND enabled = ?", chatID, true).
		Order("id").
		Find(&subs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", result.Error)
	}
	return subs, nil
}

// GetAllSubscriptions retrieves all enabled subscriptions
func (s *SQLStore) GetAllSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	result := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("id").
		Find(&subs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get all subscriptions: %w", result.Error)
	}
	return subs, nil
}

// RecordDelivery records a digest delivery attempt
func (s *SQLStore) RecordDelivery(ctx context.Context, record *model.DigestRecord) error {
	if record.DeliveredAt.IsZero() {
		record.DeliveredAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// HasDelivered checks if a subscription already received its digest for a period
func (s *SQLStore) HasDelivered(ctx context.Context, subscriptionID uint, period string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.DigestRecord{}).
		Where("subscription_id = ? AND period = ? AND status = ?", subscriptionID, period, model.DeliveryStatusSuccess).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check delivery status: %w", result.Error)
	}
	return count > 0, nil
}

// Ping checks database connectivity
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}
