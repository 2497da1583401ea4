package services

import (
	"errors"
	"testing"

	"jam-community-portal/models"
)

func TestParticipationCertificateIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Cert Jam")

	first, created, err := svc.CreateParticipationCertificate("alice", "Alice", jam.ID)
	if err != nil {
		t.Fatalf("CreateParticipationCertificate failed: %v", err)
	}
	if !created {
		t.Error("Expected first call to create a certificate")
	}
	if first.Category != models.CategoryParticipation || first.IsWinner {
		t.Error("Expected a plain participation certificate")
	}
	if first.JamName != "Cert Jam" {
		t.Errorf("Expected denormalized jam name, got %q", first.JamName)
	}

	second, created, err := svc.CreateParticipationCertificate("alice", "Alice", jam.ID)
	if err != nil {
		t.Fatalf("Second call failed: %v", err)
	}
	if created {
		t.Error("Expected second call to be a no-op")
	}
	if second.ID != first.ID {
		t.Errorf("Expected the same certificate back, got %s and %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Certificate{}).
		Where("user_id = ? AND jam_id = ? AND category = ?", "alice", jam.ID, models.CategoryParticipation).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 participation certificate, got %d", count)
	}
}

func TestParticipationCertificateJamNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	_, _, err := svc.CreateParticipationCertificate("alice", "Alice", "missing-jam")
	if !errors.Is(err, ErrJamNotFound) {
		t.Fatalf("Expected ErrJamNotFound, got %v", err)
	}
}

func TestMassIssuance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Mass Jam")

	users := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, u := range users {
		joinTestJam(t, db, u, jam.ID)
	}

	// Two of the five already hold a participation certificate
	for _, u := range []string{"u1", "u2"} {
		if _, _, err := svc.CreateParticipationCertificate(u, "", jam.ID); err != nil {
			t.Fatalf("Pre-issuance failed: %v", err)
		}
	}

	result, err := svc.CreateMassParticipationCertificates(jam.ID)
	if err != nil {
		t.Fatalf("Mass issuance failed: %v", err)
	}
	if result.TotalParticipants != 5 {
		t.Errorf("Expected 5 total participants, got %d", result.TotalParticipants)
	}
	if result.CertificatesCreated != 3 {
		t.Errorf("Expected 3 certificates created, got %d", result.CertificatesCreated)
	}

	var count int64
	db.Model(&models.Certificate{}).
		Where("jam_id = ? AND category = ?", jam.ID, models.CategoryParticipation).
		Count(&count)
	if count != 5 {
		t.Errorf("Expected 5 certificates total after mass issuance, got %d", count)
	}

	// Re-running is safe: dedup makes it a no-op
	rerun, err := svc.CreateMassParticipationCertificates(jam.ID)
	if err != nil {
		t.Fatalf("Mass issuance rerun failed: %v", err)
	}
	if rerun.CertificatesCreated != 0 {
		t.Errorf("Expected 0 certificates on rerun, got %d", rerun.CertificatesCreated)
	}
}

func TestMassIssuanceEmptyRoster(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Empty Jam")

	_, err := svc.CreateMassParticipationCertificates(jam.ID)
	if !errors.Is(err, ErrNoParticipants) {
		t.Fatalf("Expected ErrNoParticipants, got %v", err)
	}
}

func TestMassIssuanceSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	certSvc := NewCertificateService(db)
	partSvc := NewParticipationService(db)

	jam := createTestJam(t, db, "Departure Jam")
	joinTestJam(t, db, "stayer", jam.ID)
	joinTestJam(t, db, "leaver", jam.ID)
	if err := partSvc.LeaveJam("leaver", jam.ID); err != nil {
		t.Fatalf("LeaveJam failed: %v", err)
	}

	result, err := certSvc.CreateMassParticipationCertificates(jam.ID)
	if err != nil {
		t.Fatalf("Mass issuance failed: %v", err)
	}
	if result.TotalParticipants != 1 || result.CertificatesCreated != 1 {
		t.Errorf("Expected 1/1, got %d/%d", result.CertificatesCreated, result.TotalParticipants)
	}
}

func TestRecognitionCertificateNotDeduplicated(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Recognition Jam")

	first, err := svc.CreateRecognitionCertificate("alice", "Alice", jam.ID,
		models.CategoryCreativity, RecognitionExtra{GameName: "Moon Farm"})
	if err != nil {
		t.Fatalf("First recognition failed: %v", err)
	}
	second, err := svc.CreateRecognitionCertificate("alice", "Alice", jam.ID,
		models.CategoryCreativity, RecognitionExtra{GameName: "Star Cafe"})
	if err != nil {
		t.Fatalf("Second recognition failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("Expected two distinct certificate records")
	}
	if !first.IsWinner || !second.IsWinner {
		t.Error("Expected recognition certificates flagged as winner")
	}

	var count int64
	db.Model(&models.Certificate{}).
		Where("user_id = ? AND jam_id = ? AND category = ?", "alice", jam.ID, models.CategoryCreativity).
		Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 recognition certificates, got %d", count)
	}
}

func TestRecognitionRejectsParticipationCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Wrong Category Jam")

	if _, err := svc.CreateRecognitionCertificate("alice", "Alice", jam.ID,
		models.CategoryParticipation, RecognitionExtra{}); err == nil {
		t.Fatal("Expected error for participation category on recognition path")
	}
}

func TestCustomCertificateKind(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Custom Jam")

	tests := []struct {
		name       string
		data       CustomCertificateData
		wantErr    error
		wantWinner bool
	}{
		{
			name: "explicit recognition kind",
			data: CustomCertificateData{
				Kind:        models.CertificateKindRecognition,
				Category:    "community-spirit",
				CustomTitle: "Community Spirit Award",
			},
			wantWinner: true,
		},
		{
			name: "explicit participation kind",
			data: CustomCertificateData{
				Kind:           models.CertificateKindParticipation,
				CustomMainText: "For showing up every single day of the jam.",
			},
			wantWinner: false,
		},
		{
			name:    "missing kind rejected",
			data:    CustomCertificateData{CustomTitle: "No Kind"},
			wantErr: ErrInvalidCertificateKind,
		},
		{
			name:    "bogus kind rejected",
			data:    CustomCertificateData{Kind: "winner", CustomTitle: "Bogus"},
			wantErr: ErrInvalidCertificateKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert, err := svc.CreateCustomCertificate("alice", "Alice", jam.ID, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCustomCertificate failed: %v", err)
			}
			if cert.IsWinner != tt.wantWinner {
				t.Errorf("Expected IsWinner=%v, got %v", tt.wantWinner, cert.IsWinner)
			}
		})
	}
}

func TestCertificateStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Stats Jam")

	for _, u := range []string{"u1", "u2", "u3"} {
		if _, _, err := svc.CreateParticipationCertificate(u, "", jam.ID); err != nil {
			t.Fatalf("Participation issuance failed: %v", err)
		}
	}
	if _, err := svc.CreateRecognitionCertificate("u1", "", jam.ID, models.CategorySound, RecognitionExtra{}); err != nil {
		t.Fatalf("Recognition issuance failed: %v", err)
	}
	if _, err := svc.CreateRecognitionCertificate("u2", "", jam.ID, models.CategorySound, RecognitionExtra{}); err != nil {
		t.Fatalf("Recognition issuance failed: %v", err)
	}
	if _, err := svc.CreateRecognitionCertificate("u3", "", jam.ID, models.CategoryNarrative, RecognitionExtra{}); err != nil {
		t.Fatalf("Recognition issuance failed: %v", err)
	}

	stats, err := svc.GetCertificateStats(jam.ID)
	if err != nil {
		t.Fatalf("GetCertificateStats failed: %v", err)
	}
	if stats.TotalCertificates != 6 {
		t.Errorf("Expected 6 total, got %d", stats.TotalCertificates)
	}
	if stats.ParticipationCertificates != 3 {
		t.Errorf("Expected 3 participation, got %d", stats.ParticipationCertificates)
	}
	if stats.RecognitionCertificates != 3 {
		t.Errorf("Expected 3 recognition, got %d", stats.RecognitionCertificates)
	}
	if stats.CategoriesStats[models.CategorySound] != 2 {
		t.Errorf("Expected 2 sound certificates, got %d", stats.CategoriesStats[models.CategorySound])
	}
	if stats.CategoriesStats[models.CategoryNarrative] != 1 {
		t.Errorf("Expected 1 narrative certificate, got %d", stats.CategoriesStats[models.CategoryNarrative])
	}
}

func TestResolveUserNameFromMirror(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCertificateService(db)

	jam := createTestJam(t, db, "Mirror Jam")

	mirror := &models.PortalUser{
		ID:             "local-1",
		ExternalUserID: "ext-42",
		Username:       "MirroredName",
	}
	if err := db.Create(mirror).Error; err != nil {
		t.Fatalf("Failed to create mirror user: %v", err)
	}

	cert, _, err := svc.CreateParticipationCertificate("ext-42", "", jam.ID)
	if err != nil {
		t.Fatalf("CreateParticipationCertificate failed: %v", err)
	}
	if cert.UserName != "MirroredName" {
		t.Errorf("Expected name resolved from mirror, got %q", cert.UserName)
	}
}
