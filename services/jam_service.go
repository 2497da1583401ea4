// services/jam_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"jam-community-portal/models"
	"jam-community-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type JamService struct {
	DB *gorm.DB
}

func NewJamService(db *gorm.DB) *JamService {
	return &JamService{DB: db}
}

// SetActiveJam makes jamID the single active jam. The deactivate-all /
// activate-one pair runs inside one transaction, so no reader ever observes
// two active jams.
func (s *JamService) SetActiveJam(jamID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var jam models.Jam
		if err := tx.First(&jam, "id = ?", jamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJamNotFound
			}
			return fmt.Errorf("failed to load jam: %w", err)
		}

		if err := tx.Model(&models.Jam{}).
			Where("active = ? AND id <> ?", true, jamID).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate jams: %w", err)
		}

		if err := tx.Model(&models.Jam{}).
			Where("id = ?", jamID).
			Update("active", true).Error; err != nil {
			return fmt.Errorf("failed to activate jam: %w", err)
		}
		return nil
	})
}

// DeactivateJam clears the active flag for one jam.
func (s *JamService) DeactivateJam(jamID string) error {
	res := s.DB.Model(&models.Jam{}).Where("id = ?", jamID).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate jam: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrJamNotFound
	}
	return nil
}

// ToggleVotingStatus flips themeVotingClosed and returns the new value.
// There is deliberately no guard against reopening voting after a winner was
// selected — admins may want to resume voting for a re-run.
func (s *JamService) ToggleVotingStatus(jamID string) (bool, error) {
	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrJamNotFound
		}
		return false, fmt.Errorf("failed to load jam: %w", err)
	}

	newValue := !jam.ThemeVotingClosed
	if err := s.DB.Model(&jam).Update("theme_voting_closed", newValue).Error; err != nil {
		return false, fmt.Errorf("failed to toggle voting status: %w", err)
	}
	return newValue, nil
}

// SelectWinnerTheme snapshots the winning theme onto the jam AND closes
// voting, in a single update. This is the sole path that reveals results to
// participants. Calling it again with a different theme overrides the winner.
func (s *JamService) SelectWinnerTheme(jamID, themeID string) (*models.Jam, error) {
	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}

	var theme models.Theme
	if err := s.DB.Where("id = ? AND jam_id = ?", themeID, jamID).First(&theme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}

	updates := map[string]interface{}{
		"selected_theme_id":       theme.ID,
		"selected_theme_title":    theme.Title,
		"selected_theme_desc":     theme.Description,
		"selected_theme_category": theme.Category,
		"selected_theme_color":    theme.CategoryColor,
		"theme_voting_closed":     true,
	}
	if err := s.DB.Model(&jam).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to select winner theme: %w", err)
	}

	log.Printf("🏆 Winner theme selected for jam %s: %s (%s)", jamID, theme.Title, theme.ID)
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload jam: %w", err)
	}
	return &jam, nil
}

// DeleteJamCascade removes a jam together with its themes, those themes'
// votes, and its team posts, all in one transaction. Certificates carry a
// denormalized jam name and are intentionally left untouched.
func (s *JamService) DeleteJamCascade(jamID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var jam models.Jam
		if err := tx.First(&jam, "id = ?", jamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJamNotFound
			}
			return fmt.Errorf("failed to load jam: %w", err)
		}

		if err := tx.Where("jam_id = ?", jamID).Delete(&models.ThemeVote{}).Error; err != nil {
			return fmt.Errorf("failed to delete jam votes: %w", err)
		}
		if err := tx.Where("jam_id = ?", jamID).Delete(&models.Theme{}).Error; err != nil {
			return fmt.Errorf("failed to delete jam themes: %w", err)
		}
		if err := tx.Where("jam_id = ?", jamID).Delete(&models.TeamPost{}).Error; err != nil {
			return fmt.Errorf("failed to delete jam posts: %w", err)
		}
		if err := tx.Where("jam_id = ?", jamID).Delete(&models.JamParticipation{}).Error; err != nil {
			return fmt.Errorf("failed to delete jam participations: %w", err)
		}
		if err := tx.Delete(&jam).Error; err != nil {
			return fmt.Errorf("failed to delete jam: %w", err)
		}
		return nil
	})
}

// uniqueSlug derives a URL slug from the jam name, suffixing on collision.
func (s *JamService) uniqueSlug(name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		s.DB.Model(&models.Jam{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// --- HTTP endpoints ---

// CreateJam handles POST /admin/jams (multipart form, optional cover image).
func (s *JamService) CreateJam(c *fiber.Ctx) error {
	name := c.FormValue("name")
	description := c.FormValue("description")
	legacyTheme := c.FormValue("theme")
	startDateStr := c.FormValue("start_date")
	endDateStr := c.FormValue("end_date")

	if name == "" || startDateStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and start_date are required"})
	}

	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
	}

	var endDate time.Time
	if endDateStr != "" {
		endDate, err = time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
	}

	// Optional cover image → R2
	var coverURL string
	if cover, err := c.FormFile("cover_image"); err == nil && cover.Size > 0 {
		ext := filepath.Ext(cover.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "jams/covers/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(cover, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload cover image"})
		}
		coverURL = url
	}

	jam := models.Jam{
		ID:            uuid.NewString(),
		Name:          name,
		Slug:          s.uniqueSlug(name),
		Description:   description,
		Theme:         legacyTheme,
		StartDate:     startDate,
		EndDate:       endDate,
		CoverImageURL: coverURL,
	}
	if err := s.DB.Create(&jam).Error; err != nil {
		log.Printf("❌ Failed to create jam %q: %v", name, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create jam"})
	}

	log.Printf("✅ Jam created: %s (%s)", jam.Name, jam.ID)
	return c.Status(201).JSON(jam)
}

// UpdateJam handles PUT /admin/jams/:id
func (s *JamService) UpdateJam(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Theme       *string `json:"theme"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if body.Name != nil && *body.Name != "" {
		updates["name"] = *body.Name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Theme != nil {
		updates["theme"] = *body.Theme
	}
	if body.StartDate != nil {
		t, err := time.Parse(time.RFC3339, *body.StartDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
		}
		updates["start_date"] = t
	}
	if body.EndDate != nil {
		t, err := time.Parse(time.RFC3339, *body.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
		updates["end_date"] = t
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&jam).Updates(updates).Error; err != nil {
			log.Printf("❌ Failed to update jam %s: %v", jamID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to update jam"})
		}
	}

	s.DB.First(&jam, "id = ?", jamID)
	return c.JSON(jam)
}

// DeleteJam handles DELETE /admin/jams/:id
func (s *JamService) DeleteJam(c *fiber.Ctx) error {
	jamID := c.Params("id")

	if err := s.DeleteJamCascade(jamID); err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Failed to delete jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete jam"})
	}
	log.Printf("🗑️ Jam %s deleted (themes, votes, and posts cascaded)", jamID)
	return c.JSON(fiber.Map{"message": "jam deleted"})
}

// GetAllJams handles GET /jams — degrades to an empty list on store failure.
func (s *JamService) GetAllJams(c *fiber.Ctx) error {
	var jams []models.Jam
	if err := s.DB.Order("start_date DESC").Find(&jams).Error; err != nil {
		log.Printf("⚠️ Failed to list jams: %v", err)
		return c.JSON([]models.MiniJam{})
	}

	minis := make([]models.MiniJam, len(jams))
	for i, j := range jams {
		var count int64
		s.DB.Model(&models.JamParticipation{}).
			Where("jam_id = ? AND is_active = ?", j.ID, true).
			Count(&count)
		minis[i] = models.MiniJam{
			ID:                j.ID,
			Name:              j.Name,
			Slug:              j.Slug,
			Active:            j.Active,
			StartDate:         j.StartDate,
			EndDate:           j.EndDate,
			ThemeVotingClosed: j.ThemeVotingClosed,
			SelectedThemeID:   j.SelectedThemeID,
			CoverImageURL:     j.CoverImageURL,
			ParticipantsCount: count,
		}
	}
	return c.JSON(minis)
}

// GetActiveJam handles GET /jams/active
func (s *JamService) GetActiveJam(c *fiber.Ctx) error {
	var jam models.Jam
	err := s.DB.Where("active = ?", true).First(&jam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "no active jam"})
	}
	if err != nil {
		log.Printf("⚠️ Failed to load active jam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load active jam"})
	}
	return c.JSON(jam)
}

// GetJamByID handles GET /jams/:id
func (s *JamService) GetJamByID(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var jam models.Jam
	if err := s.DB.Preload("Themes").First(&jam, "id = ?", jamID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	}

	s.DB.Model(&models.JamParticipation{}).
		Where("jam_id = ? AND is_active = ?", jam.ID, true).
		Count(&jam.ParticipantsCount)
	return c.JSON(jam)
}

// ActivateJam handles PATCH /admin/jams/:id/activate
func (s *JamService) ActivateJam(c *fiber.Ctx) error {
	jamID := c.Params("id")

	if err := s.SetActiveJam(jamID); err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Failed to activate jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to activate jam"})
	}
	log.Printf("✅ Jam %s is now the active jam", jamID)
	return c.JSON(fiber.Map{"message": "jam activated", "jam_id": jamID})
}

// ToggleVoting handles PATCH /admin/jams/:id/voting
func (s *JamService) ToggleVoting(c *fiber.Ctx) error {
	jamID := c.Params("id")

	closed, err := s.ToggleVotingStatus(jamID)
	if err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Failed to toggle voting for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to toggle voting status"})
	}
	return c.JSON(fiber.Map{"theme_voting_closed": closed})
}

// SelectWinner handles POST /admin/jams/:id/winner
func (s *JamService) SelectWinner(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var body struct {
		ThemeID string `json:"theme_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ThemeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "theme_id is required"})
	}

	jam, err := s.SelectWinnerTheme(jamID, body.ThemeID)
	switch {
	case errors.Is(err, ErrJamNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	case errors.Is(err, ErrThemeNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "theme not found in this jam"})
	case err != nil:
		log.Printf("❌ Failed to select winner for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to select winner theme"})
	}
	return c.JSON(jam)
}
