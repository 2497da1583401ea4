// models/participation.go
package models

import (
	"time"
)

// JamParticipation records that a user joined a jam. Joining is idempotent;
// leaving flips IsActive instead of deleting the row so participation history
// survives departures.
type JamParticipation struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	UserID   string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_participation"`
	UserName string    `json:"user_name"` // denormalized from identity headers / user mirror
	JamID    string    `json:"jam_id" gorm:"not null;index;uniqueIndex:idx_participation"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
	IsActive bool      `json:"is_active" gorm:"default:true;index"`
}
