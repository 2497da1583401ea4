// services/certificate_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"jam-community-portal/models"
	"jam-community-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
)

type CertificateService struct {
	DB *gorm.DB
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{DB: db}
}

// participationCertID derives a deterministic id from (userID, jamID), so a
// second concurrent issuance collides on the primary key. Recognition
// certificates keep random ids — they are never deduplicated.
func participationCertID(userID, jamID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("participation-cert:"+userID+":"+jamID)).String()
}

// resolveUserName looks up a display name in the user mirror, falling back to
// the provided value.
func (s *CertificateService) resolveUserName(userID, fallback string) string {
	if fallback != "" {
		return fallback
	}
	var user models.PortalUser
	if err := s.DB.Where("external_user_id = ?", userID).First(&user).Error; err == nil {
		return user.Username
	}
	return fallback
}

// CreateParticipationCertificate issues the at-most-one participation
// certificate for (user, jam). If one already exists this is a no-op and the
// existing record is returned with created=false.
func (s *CertificateService) CreateParticipationCertificate(userID, userName, jamID string) (*models.Certificate, bool, error) {
	var existing models.Certificate
	err := s.DB.Where("user_id = ? AND jam_id = ? AND category = ?",
		userID, jamID, models.CategoryParticipation).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check for existing certificate: %w", err)
	}

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrJamNotFound
		}
		return nil, false, fmt.Errorf("failed to load jam: %w", err)
	}

	cert := models.Certificate{
		ID:       participationCertID(userID, jamID),
		UserID:   userID,
		UserName: s.resolveUserName(userID, userName),
		JamID:    jamID,
		JamName:  jam.Name,
		Category: models.CategoryParticipation,
		IsWinner: false,
	}
	if err := s.DB.Create(&cert).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent issuance landed first; treat as the no-op it is
			s.DB.Where("id = ?", cert.ID).First(&existing)
			return &existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create certificate: %w", err)
	}
	return &cert, true, nil
}

// CreateMassParticipationCertificates issues participation certificates to
// every active participant of a jam that does not hold one yet. New
// certificates go in as one batch insert. A participant joining between
// the roster snapshot and the insert is simply not included in this run —
// re-running is safe thanks to the dedup check.
func (s *CertificateService) CreateMassParticipationCertificates(jamID string) (*models.MassIssueResult, error) {
	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}

	var participants []models.JamParticipation
	if err := s.DB.Where("jam_id = ? AND is_active = ?", jamID, true).
		Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	var toCreate []models.Certificate
	for _, p := range participants {
		var count int64
		if err := s.DB.Model(&models.Certificate{}).
			Where("user_id = ? AND jam_id = ? AND category = ?",
				p.UserID, jamID, models.CategoryParticipation).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check certificate for user %s: %w", p.UserID, err)
		}
		if count > 0 {
			continue
		}
		toCreate = append(toCreate, models.Certificate{
			ID:       participationCertID(p.UserID, jamID),
			UserID:   p.UserID,
			UserName: s.resolveUserName(p.UserID, p.UserName),
			JamID:    jamID,
			JamName:  jam.Name,
			Category: models.CategoryParticipation,
			IsWinner: false,
		})
	}

	if len(toCreate) > 0 {
		if err := s.DB.Create(&toCreate).Error; err != nil {
			return nil, fmt.Errorf("failed to create certificates: %w", err)
		}
	}

	log.Printf("🎖️ Mass issuance for jam %s: %d/%d new certificates",
		jamID, len(toCreate), len(participants))
	return &models.MassIssueResult{
		TotalParticipants:   len(participants),
		CertificatesCreated: len(toCreate),
		Message: fmt.Sprintf("issued %d new participation certificates to %d participants",
			len(toCreate), len(participants)),
	}, nil
}

// RecognitionExtra carries optional game context for recognition certificates.
type RecognitionExtra struct {
	GameName        string `json:"game_name"`
	GameLink        string `json:"game_link"`
	GameDescription string `json:"game_description"`
	PostID          string `json:"post_id"`
}

// CreateRecognitionCertificate always inserts a new record — a user may hold
// several per category, e.g. as part of different teams.
func (s *CertificateService) CreateRecognitionCertificate(userID, userName, jamID, category string, extra RecognitionExtra) (*models.Certificate, error) {
	if category == "" || category == models.CategoryParticipation {
		return nil, fmt.Errorf("recognition category required, got %q", category)
	}

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}

	cert := models.Certificate{
		ID:              uuid.NewString(),
		UserID:          userID,
		UserName:        s.resolveUserName(userID, userName),
		JamID:           jamID,
		JamName:         jam.Name,
		Category:        category,
		IsWinner:        true,
		GameName:        extra.GameName,
		GameLink:        extra.GameLink,
		GameDescription: extra.GameDescription,
		PostID:          extra.PostID,
	}
	if err := s.DB.Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("failed to create recognition certificate: %w", err)
	}
	return &cert, nil
}

// CustomCertificateData carries the free-form fields of a custom certificate.
// Kind is explicit — participation vs. recognition is never inferred from
// category strings or the presence of game fields.
type CustomCertificateData struct {
	Kind            string `json:"kind"` // models.CertificateKindParticipation or ...Recognition
	Category        string `json:"category"`
	CustomTitle     string `json:"custom_title"`
	CustomSubtitle  string `json:"custom_subtitle"`
	CustomMainText  string `json:"custom_main_text"`
	CustomSignature string `json:"custom_signature"`
	GameName        string `json:"game_name"`
	GameLink        string `json:"game_link"`
}

// CreateCustomCertificate inserts a certificate with free-form copy. IsWinner
// follows directly from the explicit Kind tag.
func (s *CertificateService) CreateCustomCertificate(userID, userName, jamID string, data CustomCertificateData) (*models.Certificate, error) {
	if data.Kind != models.CertificateKindParticipation && data.Kind != models.CertificateKindRecognition {
		return nil, ErrInvalidCertificateKind
	}

	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}

	category := data.Category
	if category == "" {
		category = data.Kind
	}

	cert := models.Certificate{
		ID:              uuid.NewString(),
		UserID:          userID,
		UserName:        s.resolveUserName(userID, userName),
		JamID:           jamID,
		JamName:         jam.Name,
		Category:        category,
		IsWinner:        data.Kind == models.CertificateKindRecognition,
		GameName:        data.GameName,
		GameLink:        data.GameLink,
		CustomTitle:     data.CustomTitle,
		CustomSubtitle:  data.CustomSubtitle,
		CustomMainText:  data.CustomMainText,
		CustomSignature: data.CustomSignature,
	}
	if err := s.DB.Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom certificate: %w", err)
	}
	return &cert, nil
}

// GetCertificateStats aggregates a jam's certificates by scanning and
// counting — nothing is separately materialized.
func (s *CertificateService) GetCertificateStats(jamID string) (*models.CertificateStats, error) {
	var certs []models.Certificate
	if err := s.DB.Where("jam_id = ?", jamID).Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}

	stats := &models.CertificateStats{
		CategoriesStats: make(map[string]int64),
	}
	for _, cert := range certs {
		stats.TotalCertificates++
		if cert.Category == models.CategoryParticipation {
			stats.ParticipationCertificates++
		} else {
			stats.RecognitionCertificates++
		}
		stats.CategoriesStats[cert.Category]++
	}
	return stats, nil
}

// --- HTTP endpoints ---

// IssueParticipation handles POST /admin/certificates/participation
func (s *CertificateService) IssueParticipation(c *fiber.Ctx) error {
	var body struct {
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
		JamID    string `json:"jam_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.JamID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and jam_id are required"})
	}

	cert, created, err := s.CreateParticipationCertificate(body.UserID, body.UserName, body.JamID)
	if err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Failed to issue participation certificate: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue certificate"})
	}

	status := 200
	if created {
		status = 201
	}
	return c.Status(status).JSON(fiber.Map{"certificate": cert, "created": created})
}

// MassIssue handles POST /admin/jams/:id/certificates/mass
func (s *CertificateService) MassIssue(c *fiber.Ctx) error {
	jamID := c.Params("id")

	result, err := s.CreateMassParticipationCertificates(jamID)
	switch {
	case errors.Is(err, ErrJamNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	case errors.Is(err, ErrNoParticipants):
		return c.Status(400).JSON(fiber.Map{"error": "jam has no active participants"})
	case err != nil:
		log.Printf("❌ Mass issuance failed for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue certificates"})
	}
	return c.JSON(result)
}

// IssueRecognition handles POST /admin/certificates/recognition
func (s *CertificateService) IssueRecognition(c *fiber.Ctx) error {
	var body struct {
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
		JamID    string `json:"jam_id"`
		Category string `json:"category"`
		RecognitionExtra
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.JamID == "" || body.Category == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id, jam_id, and category are required"})
	}

	cert, err := s.CreateRecognitionCertificate(body.UserID, body.UserName, body.JamID, body.Category, body.RecognitionExtra)
	if err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		log.Printf("❌ Failed to issue recognition certificate: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue certificate"})
	}
	return c.Status(201).JSON(cert)
}

// IssueCustom handles POST /admin/certificates/custom
func (s *CertificateService) IssueCustom(c *fiber.Ctx) error {
	var body struct {
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
		JamID    string `json:"jam_id"`
		CustomCertificateData
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.JamID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and jam_id are required"})
	}

	cert, err := s.CreateCustomCertificate(body.UserID, body.UserName, body.JamID, body.CustomCertificateData)
	switch {
	case errors.Is(err, ErrInvalidCertificateKind):
		return c.Status(400).JSON(fiber.Map{"error": "kind must be \"participation\" or \"recognition\""})
	case errors.Is(err, ErrJamNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
	case err != nil:
		log.Printf("❌ Failed to issue custom certificate: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue certificate"})
	}
	return c.Status(201).JSON(cert)
}

// UpdateCertificate handles PUT /admin/certificates/:id — explicit admin edit.
func (s *CertificateService) UpdateCertificate(c *fiber.Ctx) error {
	certID := c.Params("id")

	var cert models.Certificate
	if err := s.DB.First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
	}

	var body struct {
		UserName        *string `json:"user_name"`
		GameName        *string `json:"game_name"`
		GameLink        *string `json:"game_link"`
		CustomTitle     *string `json:"custom_title"`
		CustomSubtitle  *string `json:"custom_subtitle"`
		CustomMainText  *string `json:"custom_main_text"`
		CustomSignature *string `json:"custom_signature"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if body.UserName != nil {
		updates["user_name"] = *body.UserName
	}
	if body.GameName != nil {
		updates["game_name"] = *body.GameName
	}
	if body.GameLink != nil {
		updates["game_link"] = *body.GameLink
	}
	if body.CustomTitle != nil {
		updates["custom_title"] = *body.CustomTitle
	}
	if body.CustomSubtitle != nil {
		updates["custom_subtitle"] = *body.CustomSubtitle
	}
	if body.CustomMainText != nil {
		updates["custom_main_text"] = *body.CustomMainText
	}
	if body.CustomSignature != nil {
		updates["custom_signature"] = *body.CustomSignature
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&cert).Updates(updates).Error; err != nil {
			log.Printf("❌ Failed to update certificate %s: %v", certID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to update certificate"})
		}
	}

	s.DB.First(&cert, "id = ?", certID)
	return c.JSON(cert)
}

// DeleteCertificate handles DELETE /admin/certificates/:id — no cascades.
func (s *CertificateService) DeleteCertificate(c *fiber.Ctx) error {
	certID := c.Params("id")

	res := s.DB.Delete(&models.Certificate{}, "id = ?", certID)
	if res.Error != nil {
		log.Printf("❌ Failed to delete certificate %s: %v", certID, res.Error)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete certificate"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
	}
	return c.JSON(fiber.Map{"message": "certificate deleted"})
}

// JamCertificates handles GET /admin/jams/:id/certificates
func (s *CertificateService) JamCertificates(c *fiber.Ctx) error {
	jamID := c.Params("id")

	var certs []models.Certificate
	if err := s.DB.Where("jam_id = ?", jamID).
		Order("awarded_date DESC").
		Find(&certs).Error; err != nil {
		log.Printf("⚠️ Failed to list certificates for jam %s: %v", jamID, err)
		return c.JSON([]models.Certificate{})
	}
	return c.JSON(certs)
}

// MyCertificates handles GET /users/me/certificates
func (s *CertificateService) MyCertificates(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var certs []models.Certificate
	if err := s.DB.Where("user_id = ?", userID).
		Order("awarded_date DESC").
		Find(&certs).Error; err != nil {
		log.Printf("⚠️ Failed to list certificates for user %s: %v", userID, err)
		return c.JSON([]models.Certificate{})
	}
	return c.JSON(certs)
}

// Stats handles GET /admin/jams/:id/certificates/stats
func (s *CertificateService) Stats(c *fiber.Ctx) error {
	jamID := c.Params("id")

	stats, err := s.GetCertificateStats(jamID)
	if err != nil {
		log.Printf("❌ Failed to compute certificate stats for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute certificate stats"})
	}
	return c.JSON(stats)
}

// Categories handles GET /certificates/categories — the fixed recognition
// categories with their display names, for admin pickers and export labels.
func (s *CertificateService) Categories(c *fiber.Ctx) error {
	type categoryInfo struct {
		Key         string `json:"key"`
		DisplayName string `json:"display_name"`
	}

	res := make([]categoryInfo, 0, len(models.RecognitionCategories)+1)
	res = append(res, categoryInfo{
		Key:         models.CategoryParticipation,
		DisplayName: CategoryDisplayName(models.CategoryParticipation),
	})
	for _, key := range models.RecognitionCategories {
		res = append(res, categoryInfo{Key: key, DisplayName: CategoryDisplayName(key)})
	}
	return c.JSON(res)
}

// Content handles GET /certificates/:id/content — the flat record the
// external renderer consumes.
func (s *CertificateService) Content(c *fiber.Ctx) error {
	certID := c.Params("id")

	var cert models.Certificate
	if err := s.DB.First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
	}
	return c.JSON(BuildCertificateContent(&cert))
}

// UploadFile handles POST /admin/certificates/:id/file — stores the
// externally rendered document in R2 and records its URL.
func (s *CertificateService) UploadFile(c *fiber.Ctx) error {
	certID := c.Params("id")

	var cert models.Certificate
	if err := s.DB.First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
	}

	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	// ASCII-safe object key from the holder's display name
	name := strings.ReplaceAll(strings.ToLower(unidecode.Unidecode(cert.UserName)), " ", "-")
	if name == "" {
		name = cert.UserID
	}
	key := fmt.Sprintf("certificates/%s/%s-%s%s", cert.JamID, name, cert.ID, ext)

	url, err := utils.UploadFileToR2(file, key)
	if err != nil {
		log.Printf("❌ Failed to upload certificate file %s: %v", certID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to upload certificate file"})
	}

	if err := s.DB.Model(&cert).Update("file_url", url).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save file url"})
	}

	cert.FileURL = url
	return c.JSON(cert)
}
