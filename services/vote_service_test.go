package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"jam-community-portal/models"

	"github.com/gofiber/fiber/v2"
)

func TestAddVoteCap(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jam := createTestJam(t, db, "Autumn Jam")
	var themes []*models.Theme
	for i := 0; i < 6; i++ {
		themes = append(themes, createTestTheme(t, db, jam.ID, fmt.Sprintf("Theme %d", i)))
	}

	// First MaxVotesPerUser votes succeed
	for i := 0; i < MaxVotesPerUser; i++ {
		if _, err := svc.AddVote("alice", jam.ID, themes[i].ID); err != nil {
			t.Fatalf("Vote %d failed unexpectedly: %v", i+1, err)
		}
	}

	// The next vote hits the cap and creates no record
	_, err := svc.AddVote("alice", jam.ID, themes[4].ID)
	if !errors.Is(err, ErrVoteCapExceeded) {
		t.Fatalf("Expected ErrVoteCapExceeded, got %v", err)
	}

	votes, err := svc.GetUserVotes("alice", jam.ID)
	if err != nil {
		t.Fatalf("GetUserVotes failed: %v", err)
	}
	if len(votes) != MaxVotesPerUser {
		t.Errorf("Expected %d votes, got %d", MaxVotesPerUser, len(votes))
	}

	// Removing one vote frees capacity again
	if err := svc.RemoveVote("alice", jam.ID, themes[0].ID); err != nil {
		t.Fatalf("RemoveVote failed: %v", err)
	}
	ok, err := svc.CanVoteMore("alice", jam.ID)
	if err != nil {
		t.Fatalf("CanVoteMore failed: %v", err)
	}
	if !ok {
		t.Error("Expected capacity after removing a vote")
	}
	if _, err := svc.AddVote("alice", jam.ID, themes[5].ID); err != nil {
		t.Errorf("Vote after freeing capacity failed: %v", err)
	}
}

func TestAddVoteDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jam := createTestJam(t, db, "Winter Jam")
	theme := createTestTheme(t, db, jam.ID, "Frozen Worlds")

	if _, err := svc.AddVote("bob", jam.ID, theme.ID); err != nil {
		t.Fatalf("First vote failed: %v", err)
	}

	_, err := svc.AddVote("bob", jam.ID, theme.ID)
	if !errors.Is(err, ErrDuplicateVote) {
		t.Fatalf("Expected ErrDuplicateVote, got %v", err)
	}

	// Tally increased by exactly 1, not 2
	results, err := svc.GetResultsRaw(jam.ID)
	if err != nil {
		t.Fatalf("GetResultsRaw failed: %v", err)
	}
	if results[theme.ID] != 1 {
		t.Errorf("Expected tally of 1 for theme, got %d", results[theme.ID])
	}
}

func TestAddVoteUnknownTheme(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jam := createTestJam(t, db, "Spring Jam")

	_, err := svc.AddVote("carol", jam.ID, "nonexistent-theme")
	if !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("Expected ErrThemeNotFound, got %v", err)
	}

	// A theme belonging to another jam is rejected too
	other := createTestJam(t, db, "Other Jam")
	foreign := createTestTheme(t, db, other.ID, "Foreign Theme")
	_, err = svc.AddVote("carol", jam.ID, foreign.ID)
	if !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("Expected ErrThemeNotFound for foreign theme, got %v", err)
	}
}

func TestRemoveVoteNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jam := createTestJam(t, db, "Summer Jam")
	theme := createTestTheme(t, db, jam.ID, "Heatwave")

	err := svc.RemoveVote("dave", jam.ID, theme.ID)
	if !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("Expected ErrVoteNotFound, got %v", err)
	}
}

func TestResultsBlackout(t *testing.T) {
	db := setupTestDB(t)
	voteSvc := NewVoteService(db, NewParticipationService(db))
	jamSvc := NewJamService(db)

	jam := createTestJam(t, db, "Blackout Jam")
	themeA := createTestTheme(t, db, jam.ID, "Theme A")
	themeB := createTestTheme(t, db, jam.ID, "Theme B")

	for i, user := range []string{"u1", "u2", "u3"} {
		target := themeA.ID
		if i == 2 {
			target = themeB.ID
		}
		if _, err := voteSvc.AddVote(user, jam.ID, target); err != nil {
			t.Fatalf("AddVote failed: %v", err)
		}
	}

	// Participant view is empty before a winner exists
	results, err := voteSvc.GetVotingResults(jam.ID)
	if err != nil {
		t.Fatalf("GetVotingResults failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty results before winner selection, got %v", results)
	}

	// Admin view sees the true tally regardless
	adminResults, err := voteSvc.GetAdminVotingResults(jam.ID)
	if err != nil {
		t.Fatalf("GetAdminVotingResults failed: %v", err)
	}
	if adminResults.Results[themeA.ID] != 2 || adminResults.Results[themeB.ID] != 1 {
		t.Errorf("Unexpected admin tally: %v", adminResults.Results)
	}
	if adminResults.TotalVotes != 3 {
		t.Errorf("Expected 3 total votes, got %d", adminResults.TotalVotes)
	}
	if adminResults.UniqueVoters != 3 {
		t.Errorf("Expected 3 unique voters, got %d", adminResults.UniqueVoters)
	}

	// Selecting a winner lifts the blackout
	if _, err := jamSvc.SelectWinnerTheme(jam.ID, themeA.ID); err != nil {
		t.Fatalf("SelectWinnerTheme failed: %v", err)
	}
	results, err = voteSvc.GetVotingResults(jam.ID)
	if err != nil {
		t.Fatalf("GetVotingResults after winner failed: %v", err)
	}
	if results[themeA.ID] != 2 || results[themeB.ID] != 1 {
		t.Errorf("Expected full tally after winner selection, got %v", results)
	}
}

func TestLeadingThemeTieBreak(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jam := createTestJam(t, db, "Tie Jam")

	// Two themes with distinct creation times, same vote count — the earlier
	// one must lead.
	older := &models.Theme{ID: "theme-older", JamID: jam.ID, Title: "Older", CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := &models.Theme{ID: "theme-newer", JamID: jam.ID, Title: "Newer", CreatedAt: time.Now().Add(-1 * time.Hour)}
	if err := db.Create(newer).Error; err != nil {
		t.Fatalf("Failed to create theme: %v", err)
	}
	if err := db.Create(older).Error; err != nil {
		t.Fatalf("Failed to create theme: %v", err)
	}

	if _, err := svc.AddVote("u1", jam.ID, newer.ID); err != nil {
		t.Fatalf("AddVote failed: %v", err)
	}
	if _, err := svc.AddVote("u2", jam.ID, older.ID); err != nil {
		t.Fatalf("AddVote failed: %v", err)
	}

	adminResults, err := svc.GetAdminVotingResults(jam.ID)
	if err != nil {
		t.Fatalf("GetAdminVotingResults failed: %v", err)
	}
	if adminResults.LeadingThemeID != older.ID {
		t.Errorf("Expected earliest-created theme %s to lead the tie, got %s",
			older.ID, adminResults.LeadingThemeID)
	}
}

func TestVotesAreIndependentPerJam(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	jamA := createTestJam(t, db, "Jam A")
	jamB := createTestJam(t, db, "Jam B")

	for i := 0; i < MaxVotesPerUser; i++ {
		theme := createTestTheme(t, db, jamA.ID, fmt.Sprintf("A%d", i))
		if _, err := svc.AddVote("erin", jamA.ID, theme.ID); err != nil {
			t.Fatalf("AddVote in jam A failed: %v", err)
		}
	}

	// Maxed out in jam A must not block voting in jam B
	themeB := createTestTheme(t, db, jamB.ID, "B0")
	if _, err := svc.AddVote("erin", jamB.ID, themeB.ID); err != nil {
		t.Errorf("Vote in second jam failed despite independent cap: %v", err)
	}
}

func TestMyVotesDegradedShape(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db, NewParticipationService(db))

	app := fiber.New()
	app.Get("/jams/:id/votes/me", func(c *fiber.Ctx) error {
		c.Locals("user_id", "frank")
		return svc.MyVotes(c)
	})

	// Kill the store so the read degrades
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.Close()

	resp, err := app.Test(httptest.NewRequest("GET", "/jams/jam-1/votes/me", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}

	// Degraded response keeps the success-path shape
	var payload struct {
		Votes       []models.ThemeVote `json:"votes"`
		CanVoteMore *bool              `json:"can_vote_more"`
		VotesLeft   *int               `json:"votes_left"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("Failed to decode body %s: %v", body, err)
	}
	if payload.Votes == nil || len(payload.Votes) != 0 {
		t.Errorf("Expected empty votes array, got %v", payload.Votes)
	}
	if payload.CanVoteMore == nil || payload.VotesLeft == nil {
		t.Errorf("Expected can_vote_more and votes_left present, got %s", body)
	}
	if payload.VotesLeft != nil && *payload.VotesLeft != MaxVotesPerUser {
		t.Errorf("Expected full capacity reported, got %d", *payload.VotesLeft)
	}
}
