// services/certificate_content.go
package services

import (
	"jam-community-portal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Certificate copy blocks. Pure presentation-data selection — no DB, no side
// effects. The external renderer consumes the assembled CertificateContent.

// CategoryTemplate holds the hand-authored copy for one certificate category.
type CategoryTemplate struct {
	DisplayTitle     string
	IntroText        string
	DescriptionLines []string
}

var recognitionTemplates = map[string]CategoryTemplate{
	models.CategoryOriginality: {
		DisplayTitle: "Award for Originality",
		IntroText:    "in recognition of a game concept unlike any other",
		DescriptionLines: []string{
			"For daring to build something nobody had seen before,",
			"and making the jam stranger and better for it.",
		},
	},
	models.CategoryCreativity: {
		DisplayTitle: "Award for Creativity",
		IntroText:    "in recognition of outstanding creative achievement",
		DescriptionLines: []string{
			"For turning a simple theme into an inventive, surprising game,",
			"and inspiring fellow jammers along the way.",
		},
	},
	models.CategoryNarrative: {
		DisplayTitle: "Award for Narrative",
		IntroText:    "in recognition of exceptional storytelling",
		DescriptionLines: []string{
			"For weaving a story that stayed with players",
			"long after the jam weekend ended.",
		},
	},
	models.CategoryAesthetics: {
		DisplayTitle: "Award for Aesthetics",
		IntroText:    "in recognition of remarkable visual craft",
		DescriptionLines: []string{
			"For an art direction that gave the game its own identity,",
			"built under the pressure of a ticking jam clock.",
		},
	},
	models.CategorySound: {
		DisplayTitle: "Award for Sound",
		IntroText:    "in recognition of excellence in audio design",
		DescriptionLines: []string{
			"For music and sound that carried the mood of the game,",
			"composed and mixed within the jam's deadline.",
		},
	},
}

var participationTemplate = CategoryTemplate{
	DisplayTitle: "Certificate of Participation",
	IntroText:    "for taking part in the jam from start to finish",
	DescriptionLines: []string{
		"For joining the community, building a game against the clock,",
		"and shipping something playable by the deadline.",
	},
}

// ResolveCategoryTemplate maps a certificate category to its copy block.
// Unknown recognition categories fall back to the originality copy so an
// ad-hoc category still renders a sensible document.
func ResolveCategoryTemplate(category string) CategoryTemplate {
	if category == models.CategoryParticipation {
		return participationTemplate
	}
	if tpl, ok := recognitionTemplates[category]; ok {
		return tpl
	}
	return recognitionTemplates[models.CategoryOriginality]
}

var titleCaser = cases.Title(language.English)

// CategoryDisplayName returns the human-readable name for a category key,
// used by the UI and export file names.
func CategoryDisplayName(category string) string {
	switch category {
	case models.CategoryParticipation:
		return "Participation"
	case models.CategoryOriginality:
		return "Most Original Game"
	case models.CategoryCreativity:
		return "Most Creative Game"
	case models.CategoryNarrative:
		return "Best Narrative"
	case models.CategoryAesthetics:
		return "Best Aesthetics"
	case models.CategorySound:
		return "Best Sound"
	default:
		return titleCaser.String(category)
	}
}

// BuildCertificateContent assembles the flat record handed to the external
// renderer. Custom copy on the certificate overrides the category template
// field by field.
func BuildCertificateContent(cert *models.Certificate) models.CertificateContent {
	tpl := ResolveCategoryTemplate(cert.Category)

	content := models.CertificateContent{
		CertificateID:    cert.ID,
		UserName:         cert.UserName,
		JamName:          cert.JamName,
		Category:         cert.Category,
		CategoryDisplay:  CategoryDisplayName(cert.Category),
		IsWinner:         cert.IsWinner,
		Date:             cert.AwardedDate.Format("January 2, 2006"),
		DisplayTitle:     tpl.DisplayTitle,
		IntroText:        tpl.IntroText,
		DescriptionLines: tpl.DescriptionLines,
		GameName:         cert.GameName,
		GameLink:         cert.GameLink,
		CustomTitle:      cert.CustomTitle,
		CustomSubtitle:   cert.CustomSubtitle,
		CustomMainText:   cert.CustomMainText,
		CustomSignature:  cert.CustomSignature,
	}

	if cert.CustomTitle != "" {
		content.DisplayTitle = cert.CustomTitle
	}
	if cert.CustomSubtitle != "" {
		content.IntroText = cert.CustomSubtitle
	}
	if cert.CustomMainText != "" {
		content.DescriptionLines = []string{cert.CustomMainText}
	}
	return content
}
