// services/vote_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"jam-community-portal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxVotesPerUser caps how many themes one participant may support per jam.
// Votes are additive (up to 4 simultaneous endorsements), not a single
// mutable choice.
const MaxVotesPerUser = 4

type VoteService struct {
	DB            *gorm.DB
	Participation *ParticipationService
}

func NewVoteService(db *gorm.DB, participation *ParticipationService) *VoteService {
	return &VoteService{DB: db, Participation: participation}
}

// voteID derives a deterministic id from the vote tuple. Two concurrent
// inserts for the same (user, jam, theme) collide on the primary key, so the
// uniqueness invariant lives in the key space, not only in the pre-check.
func voteID(userID, jamID, themeID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("theme-vote:"+userID+":"+jamID+":"+themeID)).String()
}

// GetUserVotes returns the caller's votes for a jam, oldest first.
func (s *VoteService) GetUserVotes(userID, jamID string) ([]models.ThemeVote, error) {
	var votes []models.ThemeVote
	err := s.DB.Where("user_id = ? AND jam_id = ?", userID, jamID).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user votes: %w", err)
	}
	return votes, nil
}

// CanVoteMore reports whether the user still has vote capacity for the jam.
func (s *VoteService) CanVoteMore(userID, jamID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.ThemeVote{}).
		Where("user_id = ? AND jam_id = ?", userID, jamID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count user votes: %w", err)
	}
	return count < MaxVotesPerUser, nil
}

// AddVote records one endorsement of a theme. Fails with ErrDuplicateVote if
// the exact tuple already exists and ErrVoteCapExceeded when the user holds
// MaxVotesPerUser votes for the jam.
func (s *VoteService) AddVote(userID, jamID, themeID string) (*models.ThemeVote, error) {
	var theme models.Theme
	if err := s.DB.Where("id = ? AND jam_id = ?", themeID, jamID).First(&theme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}

	var dup int64
	if err := s.DB.Model(&models.ThemeVote{}).
		Where("user_id = ? AND jam_id = ? AND theme_id = ?", userID, jamID, themeID).
		Count(&dup).Error; err != nil {
		return nil, fmt.Errorf("failed to check for duplicate vote: %w", err)
	}
	if dup > 0 {
		return nil, ErrDuplicateVote
	}

	ok, err := s.CanVoteMore(userID, jamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVoteCapExceeded
	}

	vote := models.ThemeVote{
		ID:      voteID(userID, jamID, themeID),
		UserID:  userID,
		JamID:   jamID,
		ThemeID: themeID,
	}
	if err := s.DB.Create(&vote).Error; err != nil {
		// A concurrent insert for the same tuple lands on the same primary
		// key; surface it as the duplicate it is.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		return nil, fmt.Errorf("failed to create vote: %w", err)
	}
	return &vote, nil
}

// RemoveVote deletes exactly one matching vote record.
func (s *VoteService) RemoveVote(userID, jamID, themeID string) error {
	res := s.DB.Where("user_id = ? AND jam_id = ? AND theme_id = ?", userID, jamID, themeID).
		Delete(&models.ThemeVote{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove vote: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVoteNotFound
	}
	return nil
}

// GetResultsRaw returns the full per-theme tally for a jam. Always computable;
// visibility gating happens in GetVotingResults.
func (s *VoteService) GetResultsRaw(jamID string) (map[string]int64, error) {
	type row struct {
		ThemeID string
		Count   int64
	}
	var rows []row
	err := s.DB.Model(&models.ThemeVote{}).
		Select("theme_id, COUNT(*) as count").
		Where("jam_id = ?", jamID).
		Group("theme_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	results := make(map[string]int64, len(rows))
	for _, r := range rows {
		results[r.ThemeID] = r.Count
	}
	return results, nil
}

// GetVotingResults is the participant-facing tally. It stays empty until an
// admin selects a winning theme — voters never see running totals mid-vote.
func (s *VoteService) GetVotingResults(jamID string) (map[string]int64, error) {
	var jam models.Jam
	if err := s.DB.First(&jam, "id = ?", jamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJamNotFound
		}
		return nil, fmt.Errorf("failed to load jam: %w", err)
	}
	if jam.SelectedThemeID == nil {
		return map[string]int64{}, nil
	}
	return s.GetResultsRaw(jamID)
}

// GetAdminVotingResults always returns the full tally plus vote totals and the
// current leader. Ties on the leading theme break deterministically: earliest
// created theme first, then lowest theme id.
func (s *VoteService) GetAdminVotingResults(jamID string) (*models.VotingResults, error) {
	results, err := s.GetResultsRaw(jamID)
	if err != nil {
		return nil, err
	}

	var totalVotes int64
	if err := s.DB.Model(&models.ThemeVote{}).
		Where("jam_id = ?", jamID).
		Count(&totalVotes).Error; err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	var uniqueVoters int64
	if err := s.DB.Model(&models.ThemeVote{}).
		Where("jam_id = ?", jamID).
		Distinct("user_id").
		Count(&uniqueVoters).Error; err != nil {
		return nil, fmt.Errorf("failed to count voters: %w", err)
	}

	var themes []models.Theme
	if err := s.DB.Where("jam_id = ?", jamID).
		Order("created_at ASC, id ASC").
		Find(&themes).Error; err != nil {
		return nil, fmt.Errorf("failed to load themes: %w", err)
	}

	leading := ""
	var best int64 = 0
	for _, t := range themes {
		if count := results[t.ID]; count > best {
			best = count
			leading = t.ID
		}
	}

	return &models.VotingResults{
		Results:        results,
		TotalVotes:     totalVotes,
		UniqueVoters:   uniqueVoters,
		LeadingThemeID: leading,
	}, nil
}

// isUniqueViolation matches both the Postgres and the SQLite (test) phrasing.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// --- HTTP endpoints ---

// Vote handles POST /jams/:id/themes/:theme_id/vote
func (s *VoteService) Vote(c *fiber.Ctx) error {
	jamID := c.Params("id")
	themeID := c.Params("theme_id")
	userID, _ := c.Locals("user_id").(string)

	// Voting is gated on active participation in the jam
	joined, err := s.Participation.IsParticipant(userID, jamID)
	if err != nil {
		log.Printf("⚠️ Participation gate failed for user %s jam %s: %v", userID, jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to verify participation"})
	}
	if !joined {
		return c.Status(403).JSON(fiber.Map{"error": "join the jam before voting on themes"})
	}

	vote, err := s.AddVote(userID, jamID, themeID)
	switch {
	case errors.Is(err, ErrThemeNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "theme not found"})
	case errors.Is(err, ErrDuplicateVote):
		return c.Status(409).JSON(fiber.Map{"error": "you already voted for this theme"})
	case errors.Is(err, ErrVoteCapExceeded):
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("you can vote for at most %d themes", MaxVotesPerUser)})
	case err != nil:
		log.Printf("❌ AddVote failed for user %s theme %s: %v", userID, themeID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to record vote"})
	}
	return c.Status(201).JSON(vote)
}

// Unvote handles DELETE /jams/:id/themes/:theme_id/vote
func (s *VoteService) Unvote(c *fiber.Ctx) error {
	jamID := c.Params("id")
	themeID := c.Params("theme_id")
	userID, _ := c.Locals("user_id").(string)

	err := s.RemoveVote(userID, jamID, themeID)
	if errors.Is(err, ErrVoteNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "vote not found"})
	}
	if err != nil {
		log.Printf("❌ RemoveVote failed for user %s theme %s: %v", userID, themeID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to remove vote"})
	}
	return c.JSON(fiber.Map{"message": "vote removed"})
}

// MyVotes handles GET /jams/:id/votes/me
func (s *VoteService) MyVotes(c *fiber.Ctx) error {
	jamID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	votes, err := s.GetUserVotes(userID, jamID)
	if err != nil {
		log.Printf("⚠️ Failed to load votes for user %s jam %s: %v", userID, jamID, err)
		// Same shape as the success path so clients keying on "votes" degrade cleanly
		return c.JSON(fiber.Map{
			"votes":         []models.ThemeVote{},
			"can_vote_more": true,
			"votes_left":    MaxVotesPerUser,
		})
	}
	return c.JSON(fiber.Map{
		"votes":         votes,
		"can_vote_more": len(votes) < MaxVotesPerUser,
		"votes_left":    MaxVotesPerUser - len(votes),
	})
}

// Results handles GET /jams/:id/results — blackout-gated public tally.
func (s *VoteService) Results(c *fiber.Ctx) error {
	jamID := c.Params("id")

	results, err := s.GetVotingResults(jamID)
	if err != nil {
		if errors.Is(err, ErrJamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "jam not found"})
		}
		// Degrade to an empty tally on store failure
		log.Printf("⚠️ Failed to load results for jam %s: %v", jamID, err)
		return c.JSON(fiber.Map{"results": map[string]int64{}})
	}
	return c.JSON(fiber.Map{"results": results})
}

// AdminResults handles GET /admin/jams/:id/results — always the full picture.
func (s *VoteService) AdminResults(c *fiber.Ctx) error {
	jamID := c.Params("id")

	results, err := s.GetAdminVotingResults(jamID)
	if err != nil {
		log.Printf("❌ Failed to load admin results for jam %s: %v", jamID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load voting results"})
	}
	return c.JSON(results)
}
