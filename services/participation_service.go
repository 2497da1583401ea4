// services/participation_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"jam-community-portal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipationService struct {
	DB *gorm.DB
}

func NewParticipationService(db *gorm.DB) *ParticipationService {
	return &ParticipationService{DB: db}
}

// participationID derives a deterministic id from (userID, jamID) so a
// concurrent double-join collides on the primary key instead of creating
// two roster rows.
func participationID(userID, jamID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("participation:"+userID+":"+jamID)).String()
}

// JoinJam registers a user as a participant of a jam. Idempotent: if an
// active participation already exists it is returned as-is; if the user left
// earlier, the old row is revived so join history is preserved.
func (s *ParticipationService) JoinJam(userID, userName, jamID string) (*models.JamParticipation, error) {
	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}

	var existing models.JamParticipation
	err := s.DB.Where("user_id = ? AND jam_id = ?", userID, jamID).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			return &existing, nil
		}
		// Rejoin after leaving: revive instead of inserting a second row
		existing.IsActive = true
		if userName != "" {
			existing.UserName = userName
		}
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to revive participation: %w", err)
		}
		log.Printf("🔁 User %s rejoined jam %s", userID, jamID)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}

	participation := models.JamParticipation{
		ID:       participationID(userID, jamID),
		UserID:   userID,
		UserName: userName,
		JamID:    jamID,
		IsActive: true,
	}
	if err := s.DB.Create(&participation).Error; err != nil {
		return nil, fmt.Errorf("failed to create participation: %w", err)
	}
	log.Printf("✅ User %s joined jam %s", userID, jamID)
	return &participation, nil
}

// LeaveJam deactivates the user's participation. The row is kept (soft
// delete) so "recent joins" style stats can still see past participants.
func (s *ParticipationService) LeaveJam(userID, jamID string) error {
	res := s.DB.Model(&models.JamParticipation{}).
		Where("user_id = ? AND jam_id = ? AND is_active = ?", userID, jamID, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to leave jam: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotParticipant
	}
	log.Printf("👋 User %s left jam %s", userID, jamID)
	return nil
}

// IsParticipant answers whether the user is an active participant of the jam.
func (s *ParticipationService) IsParticipant(userID, jamID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.JamParticipation{}).
		Where("user_id = ? AND jam_id = ? AND is_active = ?", userID, jamID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return count > 0, nil
}

// GetJamParticipants returns the active roster, newest first.
func (s *ParticipationService) GetJamParticipants(jamID string) ([]models.JamParticipation, error) {
	var participants []models.JamParticipation
	err := s.DB.Where("jam_id = ? AND is_active = ?", jamID, true).
		Order("joined_at DESC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	return participants, nil
}

func (s *ParticipationService) CountParticipants(jamID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.JamParticipation{}).
		Where("jam_id = ? AND is_active = ?", jamID, true).
		Count(&count).Error
	return count, err
}

// --- HTTP endpoints ---

// Join handles POST /jams/:id/join
func (s *ParticipationService) Join(c *fiber.Ctx) error {
	jamID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	userName, _ := c.Locals("user_name").(string)

	participation, err := s.JoinJam(userID, userName, jamID)
	if err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Join failed for user %s jam %s: %v", userID, jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join jam"})
	}
	return c.JSON(participation)
}

// Leave handles POST /jams/:id/leave
func (s *ParticipationService) Leave(c *fiber.Ctx) error {
	jamID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	if err := s.LeaveJam(userID, jamID); err != nil {
		if errors.Is(err, ErrNotParticipant) {
			return c.Status(404).JSON(fiber.Map{"error": "not a participant of this jam"})
		}
		log.Printf("❌ Leave failed for user %s jam %s: %v", userID, jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to leave jam"})
	}
	return c.JSON(fiber.Map{"message": "left jam"})
}

// Status handles GET /jams/:id/participation — whether the caller has joined.
func (s *ParticipationService) Status(c *fiber.Ctx) error {
	jamID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	joined, err := s.IsParticipant(userID, jamID)
	if err != nil {
		log.Printf("⚠️ Participation check failed for user %s jam %s: %v", userID, jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to check participation"})
	}
	return c.JSON(fiber.Map{"joined": joined})
}

// Roster handles GET /jams/:id/participants
func (s *ParticipationService) Roster(c *fiber.Ctx) error {
	jamID := c.Params("id")

	participants, err := s.GetJamParticipants(jamID)
	if err != nil {
		// Read path degrades to an empty roster rather than an error banner
		log.Printf("⚠️ Failed to load roster for jam %s: %v", jamID, err)
		return c.JSON([]models.JamParticipation{})
	}
	return c.JSON(participants)
}
