package model

import (
	"strings"
	"time"
)

// subscriptionGenreSeparator joins selected genres in the Genres column.
// Genre labels never contain it, raw combined genre strings contain commas.
const subscriptionGenreSeparator = "|"

// Subscription represents a chat's subscription to periodic dashboard digests.
// A zero MinYear/MaxYear means the dashboard default range, an empty Genres
// means all genre labels.
type Subscription struct {
	ID         uint   `gorm:"primaryKey"`
	ChatID     int64  `gorm:"index;not null"`
	ChatType   string `gorm:"size:20"`
	MinYear    int
	MaxYear    int
	Genres     string `gorm:"size:1000"`
	GenreMatch string `gorm:"size:20"`
	Enabled    bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}

// HasYears reports whether the subscription pins its own year range
func (s *Subscription) HasYears() bool {
	return s.MinYear != 0 || s.MaxYear != 0
}

// GenreList returns the selected genres, nil when all genres are selected
func (s *Subscription) GenreList() []string {
	if s.Genres == "" {
		return nil
	}
	return strings.Split(s.Genres, subscriptionGenreSeparator)
}

// SetGenreList stores the selected genres
func (s *Subscription) SetGenreList(genres []string) {
	s.Genres = strings.Join(genres, subscriptionGenreSeparator)
}
