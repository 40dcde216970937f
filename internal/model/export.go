package model

import "time"

// CertificateKind identifies what a certificate is awarded for.
type CertificateKind string

const (
	CertPreTest    CertificateKind = "pre-test"
	CertPostTest   CertificateKind = "post-test"
	CertLevel      CertificateKind = "level"
	CertCompletion CertificateKind = "completion"
)

// CertificateStats are the numbers printed on a certificate.
type CertificateStats struct {
	Score          int  `json:"score"`
	TotalQuestions int  `json:"total_questions"`
	Improvement    *int `json:"improvement,omitempty"`
	Stars          *int `json:"stars,omitempty"`
	Trials         *int `json:"trials,omitempty"`
}

// CertificateDescriptor is a derived, never persisted eligibility fact.
type CertificateDescriptor struct {
	ID          string           `json:"id"`
	Kind        CertificateKind  `json:"kind"`
	LevelID     string           `json:"level_id,omitempty"`
	Recipient   string           `json:"recipient"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	EarnedAt    time.Time        `json:"earned_at"`
	Stats       CertificateStats `json:"stats"`
}

// AccountsExport is the top-level JSON structure for the export command.
type AccountsExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Levels     int             `json:"levels"`
	Accounts   []AccountResult `json:"accounts"`
}

// AccountResult holds one learner's data for export. Passwords are never exported.
type AccountResult struct {
	Username        string                  `json:"username"`
	Profile         Profile                 `json:"profile"`
	Progress        GameProgress            `json:"progress"`
	CompletedLevels int                     `json:"completed_levels"`
	PercentComplete float64                 `json:"percent_complete"`
	Certificates    []CertificateDescriptor `json:"certificates"`
}
