// models/jam.go
package models

import (
	"time"
)

// Jam represents a time-boxed game-development event.
// At most one jam is active system-wide at any moment.
type Jam struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex"` // shareable URL fragment, derived from Name
	Description string    `json:"description"`
	Theme       string    `json:"theme"` // legacy free-text theme, kept for jams created before theme voting
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Active      bool      `json:"active" gorm:"default:false;index"`

	// Theme voting state
	ThemeVotingClosed bool `json:"theme_voting_closed" gorm:"default:false"`

	// Winner snapshot — denormalized so the winner survives theme edits/deletes.
	// SelectedThemeID == nil means no winner has been chosen yet (results blackout).
	SelectedThemeID       *string `json:"selected_theme_id,omitempty"`
	SelectedThemeTitle    string  `json:"selected_theme_title,omitempty"`
	SelectedThemeDesc     string  `json:"selected_theme_description,omitempty"`
	SelectedThemeCategory string  `json:"selected_theme_category,omitempty"`
	SelectedThemeColor    string  `json:"selected_theme_color,omitempty"`

	CoverImageURL string `json:"cover_image_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Themes []Theme `json:"themes,omitempty" gorm:"foreignKey:JamID"`

	// Calculated fields (not stored in DB)
	ParticipantsCount int64 `json:"participants_count,omitempty" gorm:"-"`
}

// Theme is a proposed creative prompt for a jam, subject to voting.
type Theme struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	JamID         string    `json:"jam_id" gorm:"not null;index"`
	Title         string    `json:"title" gorm:"not null"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CategoryColor string    `json:"category_color"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MiniJam is a brief summary of a jam for listing views.
type MiniJam struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	Active            bool      `json:"active"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	ThemeVotingClosed bool      `json:"theme_voting_closed"`
	SelectedThemeID   *string   `json:"selected_theme_id,omitempty"`
	CoverImageURL     string    `json:"cover_image_url,omitempty"`
	ParticipantsCount int64     `json:"participants_count"`
}
