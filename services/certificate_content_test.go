package services

import (
	"testing"
	"time"

	"jam-community-portal/models"
)

func TestResolveCategoryTemplate(t *testing.T) {
	tests := []struct {
		category  string
		wantTitle string
	}{
		{models.CategoryParticipation, "Certificate of Participation"},
		{models.CategoryOriginality, "Award for Originality"},
		{models.CategoryCreativity, "Award for Creativity"},
		{models.CategoryNarrative, "Award for Narrative"},
		{models.CategoryAesthetics, "Award for Aesthetics"},
		{models.CategorySound, "Award for Sound"},
		// Unknown recognition categories fall back to the originality copy
		{"community-spirit", "Award for Originality"},
		{"", "Award for Originality"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			tpl := ResolveCategoryTemplate(tt.category)
			if tpl.DisplayTitle != tt.wantTitle {
				t.Errorf("Expected %q, got %q", tt.wantTitle, tpl.DisplayTitle)
			}
			if tpl.IntroText == "" || len(tpl.DescriptionLines) == 0 {
				t.Error("Expected non-empty copy block")
			}
		})
	}
}

func TestCategoryDisplayName(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{models.CategoryParticipation, "Participation"},
		{models.CategoryOriginality, "Most Original Game"},
		{models.CategorySound, "Best Sound"},
		{"community-spirit", "Community-Spirit"}, // unknown keys get title-cased
	}

	for _, tt := range tests {
		if got := CategoryDisplayName(tt.category); got != tt.want {
			t.Errorf("CategoryDisplayName(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestBuildCertificateContent(t *testing.T) {
	awarded := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	cert := &models.Certificate{
		ID:          "cert-1",
		UserName:    "Alice",
		JamName:     "Spring Jam 2026",
		Category:    models.CategoryCreativity,
		IsWinner:    true,
		GameName:    "Moon Farm",
		GameLink:    "https://example.com/moon-farm",
		AwardedDate: awarded,
	}

	content := BuildCertificateContent(cert)
	if content.DisplayTitle != "Award for Creativity" {
		t.Errorf("Unexpected display title %q", content.DisplayTitle)
	}
	if content.CategoryDisplay != "Most Creative Game" {
		t.Errorf("Unexpected category display %q", content.CategoryDisplay)
	}
	if content.Date != "March 14, 2026" {
		t.Errorf("Unexpected date %q", content.Date)
	}
	if content.GameName != "Moon Farm" {
		t.Errorf("Expected game context carried through, got %q", content.GameName)
	}
}

func TestBuildCertificateContentCustomOverrides(t *testing.T) {
	cert := &models.Certificate{
		ID:              "cert-2",
		UserName:        "Bob",
		JamName:         "Winter Jam",
		Category:        "community-spirit",
		IsWinner:        true,
		CustomTitle:     "Community Spirit Award",
		CustomSubtitle:  "for keeping the chat alive at 3am",
		CustomMainText:  "No jammer was left behind on Bob's watch.",
		CustomSignature: "The Organizers",
		AwardedDate:     time.Now(),
	}

	content := BuildCertificateContent(cert)
	if content.DisplayTitle != "Community Spirit Award" {
		t.Errorf("Expected custom title to override template, got %q", content.DisplayTitle)
	}
	if content.IntroText != "for keeping the chat alive at 3am" {
		t.Errorf("Expected custom subtitle as intro, got %q", content.IntroText)
	}
	if len(content.DescriptionLines) != 1 || content.DescriptionLines[0] != "No jammer was left behind on Bob's watch." {
		t.Errorf("Expected custom main text as description, got %v", content.DescriptionLines)
	}
	if content.CustomSignature != "The Organizers" {
		t.Errorf("Expected signature carried through, got %q", content.CustomSignature)
	}
}
