// models/post.go
package models

import (
	"time"
)

// TeamPost is a team-finding ad scoped to a jam (its "edition"). Posts are
// thin CRUD records; they matter to the core only because deleting a jam
// cascades to them.
type TeamPost struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	JamID       string    `json:"jam_id" gorm:"not null;index"` // the jam edition this ad belongs to
	UserID      string    `json:"user_id" gorm:"not null;index"`
	UserName    string    `json:"user_name"`
	Title       string    `json:"title" gorm:"not null"`
	Content     string    `json:"content"`
	Skills      string    `json:"skills"`       // comma-separated skill tags
	ContactInfo string    `json:"contact_info"` // discord handle, email, etc.
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
