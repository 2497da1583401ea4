// services/post_service.go
package services

import (
	"errors"
	"log"

	"jam-community-portal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostService struct {
	DB            *gorm.DB
	Participation *ParticipationService
}

func NewPostService(db *gorm.DB, participation *ParticipationService) *PostService {
	return &PostService{DB: db, Participation: participation}
}

// CreatePost handles POST /jams/:id/posts — team-finding ads, participants only.
func (s *PostService) CreatePost(c *fiber.Ctx) error {
	jamID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	userName, _ := c.Locals("user_name").(string)

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to load jam"})
	}

	joined, err := s.Participation.IsParticipant(userID, jamID)
	if err != nil {
		log.Printf("⚠️ Participation gate failed for user %s jam %s: %v", userID, jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to verify participation"})
	}
	if !joined {
		return c.Status(403).JSON(fiber.Map{"error": "join the jam before posting a team ad"})
	}

	var body struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Skills      string `json:"skills"`
		ContactInfo string `json:"contact_info"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	post := models.TeamPost{
		ID:          uuid.NewString(),
		JamID:       jamID,
		UserID:      userID,
		UserName:    userName,
		Title:       body.Title,
		Content:     body.Content,
		Skills:      body.Skills,
		ContactInfo: body.ContactInfo,
	}
	if err := s.DB.Create(&post).Error; err != nil {
		log.Printf("❌ Failed to create post for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create post"})
	}
	return c.Status(201).JSON(post)
}

// GetJamPosts handles GET /jams/:id/posts
func (s *PostService) GetJamPosts(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var posts []models.TeamPost
	if err := s.DB.Where("jam_id = ?", jamID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		log.Printf("⚠️ Failed to list posts for jam %s: %v", jamID, err)
		return c.JSON([]models.TeamPost{})
	}
	return c.JSON(posts)
}

// DeletePost handles DELETE /posts/:id — owner or admin.
func (s *PostService) DeletePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	isAdmin, _ := c.Locals("is_admin").(bool)

	var post models.TeamPost
	if err := s.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}

	if post.UserID != userID && !isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "you can only delete your own posts"})
	}

	if err := s.DB.Delete(&post).Error; err != nil {
		log.Printf("❌ Failed to delete post %s: %v", postID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete post"})
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}
