// services/theme_service.go
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

// Theme catalog — CRUD for theme proposals scoped to a jam. Lives on
// JamService since themes are owned by their jam.

// DeleteThemeCascade removes a theme and every vote referencing it in one
// transaction.
func (s *JamService) DeleteThemeCascade(themeID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var theme models.Theme
		if err := tx.First(&theme, "id = ?", themeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrThemeNotFound
			}
			return fmt.Errorf("failed to load theme: %w", err)
		}

		if err := tx.Where("theme_id = ?", themeID).Delete(&models.ThemeVote{}).Error; err != nil {
			return fmt.Errorf("failed to delete theme votes: %w", err)
		}
		if err := tx.Delete(&theme).Error; err != nil {
			return fmt.Errorf("failed to delete theme: %w", err)
		}
		return nil
	})
}

// --- HTTP endpoints ---

// CreateTheme handles POST /admin/jams/:id/themes
func (s *JamService) CreateTheme(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	}

	var body struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		CategoryColor string `json:"category_color"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	theme := models.Theme{
		ID:            uuid.NewString(),
		JamID:         jamID,
		Title:         body.Title,
		Description:   body.Description,
		Category:      body.Category,
		CategoryColor: body.CategoryColor,
	}
	if err := s.DB.Create(&theme).Error; err != nil {
		log.Printf("❌ Failed to create theme for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create theme"})
	}
	return c.Status(201).JSON(theme)
}

// UpdateTheme handles PUT /admin/themes/:id
func (s *JamService) UpdateTheme(c *fiber.Ctx) error {
	themeID := c.Params("id")

	var theme models.Theme
	if err := s.DB.First(&theme, "id = ?", themeID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "theme not found"})
	}

	var body struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Category      *string `json:"category"`
		CategoryColor *string `json:"category_color"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if body.Title != nil && *body.Title != "" {
		updates["title"] = *body.Title
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Category != nil {
		updates["category"] = *body.Category
	}
	if body.CategoryColor != nil {
		updates["category_color"] = *body.CategoryColor
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&theme).Updates(updates).Error; err != nil {
			log.Printf("❌ Failed to update theme %s: %v", themeID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to update theme"})
		}
	}

	s.DB.First(&theme, "id = ?", themeID)
	return c.JSON(theme)
}

// DeleteTheme handles DELETE /admin/themes/:id
func (s *JamService) DeleteTheme(c *fiber.Ctx) error {
	themeID := c.Params("id")

	if err := s.DeleteThemeCascade(themeID); err != nil {
		if errors.Is(err, ErrThemeNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "theme not found"})
		}
		log.Printf("❌ Failed to delete theme %s: %v", themeID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete theme"})
	}
	log.Printf("🗑️ Theme %s deleted (votes cascaded)", themeID)
	return c.JSON(fiber.Map{"message": "theme deleted"})
}

// GetJamThemes handles GET /jams/:id/themes
func (s *JamService) GetJamThemes(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var themes []models.Theme
	if err := s.DB.Where("jam_id = ?", jamID).
		Order("created_at ASC").
		Find(&themes).Error; err != nil {
		log.Printf("⚠️ Failed to list themes for jam %s: %v", jamID, err)
		return c.JSON([]models.Theme{})
	}
	return c.JSON(themes)
}
