// models/vote.go
package models

import (
	"time"
)

// ThemeVote is one participant's endorsement of one theme for one jam.
// The ID is derived deterministically from (UserID, JamID, ThemeID), so two
// concurrent inserts for the same tuple collide on the primary key instead of
// silently duplicating. The composite unique index backs the same invariant.
type ThemeVote struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_vote_tuple"`
	JamID     string    `json:"jam_id" gorm:"not null;index;uniqueIndex:idx_vote_tuple"`
	ThemeID   string    `json:"theme_id" gorm:"not null;index;uniqueIndex:idx_vote_tuple"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// VotingResults is the admin-facing aggregate over a jam's votes.
type VotingResults struct {
	Results        map[string]int64 `json:"results"` // theme_id → vote count
	TotalVotes     int64            `json:"total_votes"`
	UniqueVoters   int64            `json:"unique_voters"`
	LeadingThemeID string           `json:"leading_theme_id,omitempty"`
}
