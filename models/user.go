package models

import (
	"time"
)

// PortalUser is a local snapshot of user data needed by the portal.
// Owned and managed solely by this service; populated via the sync worker
// from the identity provider's profile endpoint.
type PortalUser struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex;not null" json:"external_user_id"` // identity provider uid
	Username       string    `gorm:"index;not null" json:"username"`
	Email          string    `json:"email,omitempty"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}
