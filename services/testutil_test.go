package services

import (
	"testing"
	"time"

	"jam-community-portal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Jam{},
		&models.Theme{},
		&models.ThemeVote{},
		&models.JamParticipation{},
		&models.Certificate{},
		&models.TeamPost{},
		&models.PortalUser{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createTestJam(t *testing.T, db *gorm.DB, name string) *models.Jam {
	t.Helper()

	jam := &models.Jam{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      uuid.NewString(), // uniqueness is all tests need
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(48 * time.Hour),
	}
	if err := db.Create(jam).Error; err != nil {
		t.Fatalf("Failed to create test jam: %v", err)
	}
	return jam
}

func createTestTheme(t *testing.T, db *gorm.DB, jamID, title string) *models.Theme {
	t.Helper()

	theme := &models.Theme{
		ID:    uuid.NewString(),
		JamID: jamID,
		Title: title,
	}
	if err := db.Create(theme).Error; err != nil {
		t.Fatalf("Failed to create test theme: %v", err)
	}
	return theme
}

func joinTestJam(t *testing.T, db *gorm.DB, userID, jamID string) {
	t.Helper()

	svc := NewParticipationService(db)
	if _, err := svc.JoinJam(userID, "user-"+userID, jamID); err != nil {
		t.Fatalf("Failed to join test jam: %v", err)
	}
}
