// models/certificate.go
package models

import (
	"time"
)

// Certificate kinds — explicit at creation time, never inferred from
// loosely-related fields.
const (
	CertificateKindParticipation = "participation"
	CertificateKindRecognition   = "recognition"
)

// Recognition category keys. "participation" doubles as the category of plain
// participation certificates.
const (
	CategoryParticipation = "participation"
	CategoryOriginality   = "originality"
	CategoryCreativity    = "creativity"
	CategoryNarrative     = "narrative"
	CategoryAesthetics    = "aesthetics"
	CategorySound         = "sound"
)

// RecognitionCategories lists the fixed recognition categories in display order.
var RecognitionCategories = []string{
	CategoryOriginality,
	CategoryCreativity,
	CategoryNarrative,
	CategoryAesthetics,
	CategorySound,
}

// Certificate is an issued record of participation or recognition for a user
// in a jam. Participation certificates are deduplicated per (user, jam) via a
// deterministic primary key; recognition certificates are not (a user may earn
// the same category on different teams).
type Certificate struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;index"`
	UserName string `json:"user_name"`
	JamID    string `json:"jam_id" gorm:"not null;index"`
	JamName  string `json:"jam_name"` // denormalized so the certificate survives jam deletion

	Category string `json:"category" gorm:"not null;index"`
	IsWinner bool   `json:"is_winner" gorm:"default:false"`

	// Optional game context for recognition certificates
	GameName        string `json:"game_name,omitempty"`
	GameLink        string `json:"game_link,omitempty"`
	GameDescription string `json:"game_description,omitempty"`
	PostID          string `json:"post_id,omitempty"`

	// Free-form fields for custom certificates
	CustomTitle     string `json:"custom_title,omitempty"`
	CustomSubtitle  string `json:"custom_subtitle,omitempty"`
	CustomMainText  string `json:"custom_main_text,omitempty"`
	CustomSignature string `json:"custom_signature,omitempty"`

	// Externally rendered document, uploaded after issuance
	FileURL string `json:"file_url,omitempty"`

	AwardedDate time.Time `json:"awarded_date" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MassIssueResult summarizes one mass participation issuance run.
type MassIssueResult struct {
	TotalParticipants   int    `json:"total_participants"`
	CertificatesCreated int    `json:"certificates_created"`
	Message             string `json:"message"`
}

// CertificateStats is the per-jam aggregation view.
type CertificateStats struct {
	TotalCertificates         int64            `json:"total_certificates"`
	ParticipationCertificates int64            `json:"participation_certificates"`
	RecognitionCertificates   int64            `json:"recognition_certificates"`
	CategoriesStats           map[string]int64 `json:"categories_stats"`
}

// CertificateContent is the flat record handed to the external renderer.
type CertificateContent struct {
	CertificateID    string   `json:"certificate_id"`
	UserName         string   `json:"user_name"`
	JamName          string   `json:"jam_name"`
	Category         string   `json:"category"`
	CategoryDisplay  string   `json:"category_display"`
	IsWinner         bool     `json:"is_winner"`
	Date             string   `json:"date"`
	DisplayTitle     string   `json:"display_title"`
	IntroText        string   `json:"intro_text"`
	DescriptionLines []string `json:"description_lines"`
	GameName         string   `json:"game_name,omitempty"`
	GameLink         string   `json:"game_link,omitempty"`
	CustomTitle      string   `json:"custom_title,omitempty"`
	CustomSubtitle   string   `json:"custom_subtitle,omitempty"`
	CustomMainText   string   `json:"custom_main_text,omitempty"`
	CustomSignature  string   `json:"custom_signature,omitempty"`
}
