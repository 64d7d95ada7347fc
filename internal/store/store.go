package store

import (
	"context"

	"github.com/user/moviedash-go/internal/model"
)

// Store defines the interface for data persistence operations
type Store interface {
	// Movie mirror operations
	ReplaceMovies(ctx context.Context, movies []model.Movie) (int, error)
	CountMovies(ctx context.Context) (int64, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	DeleteSubscription(ctx context.Context, chatID int64, id uint) (bool, error)
	DeleteAllSubscriptions(ctx context.Context, chatID int64) (int64, error)
	GetSubscriptions(ctx context.Context, chatID int64) ([]*model.Subscription, error)
	GetAllSubscriptions(ctx context.Context) ([]*model.Subscription, error)

	// DigestRecord operations
	RecordDelivery(ctx context.Context, record *model.DigestRecord) error
	HasDelivered(ctx context.Context, subscriptionID uint, period string) (bool, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
