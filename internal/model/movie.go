package model

import (
	"time"
)

// Movie represents a cleaned movie record from the dataset.
// JSON names match the dataset columns so tables can be handed to chart
// renderers without renaming.
type Movie struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	Title            string     `gorm:"size:500;not null" json:"Title"`
	Overview         string     `gorm:"type:text" json:"Overview"`
	Popularity       float64    `gorm:"index" json:"Popularity"`
	VoteCount        int64      `json:"Vote_Count"`
	VoteAverage      float64    `gorm:"index" json:"Vote_Average"`
	OriginalLanguage string     `gorm:"size:16" json:"Original_Language"`
	Genre            string     `gorm:"size:255;index" json:"Genre"`
	ReleaseDate      *time.Time `gorm:"type:date" json:"Release_Date"`
	CreatedAt        time.Time  `json:"-"`
}

// TableName returns the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// Year returns the release year, or false when the release date is unknown
func (m *Movie) Year() (int, bool) {
	if m.ReleaseDate == nil {
		return 0, false
	}
	return m.ReleaseDate.Year(), true
}

// Genres returns the exploded genre labels of the record
func (m *Movie) Genres() []string {
	return SplitGenres(m.Genre)
}
