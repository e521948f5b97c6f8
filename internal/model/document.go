package model

// Document is the ephemeral handle for one open workspace. It is scoped to
// the session and never persisted locally beyond it.
type Document struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	MimeClassification string `json:"mime_classification,omitempty"`
}

// RiskLevel classifies a document's overall contract risk.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// RiskAssessment is one risk fetch for a document. A new fetch fully
// replaces the prior one; there is no versioning or history.
type RiskAssessment struct {
	RiskScore      int       `json:"risk_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	GoodClauses    []string  `json:"good_clauses"`
	CautionClauses []string  `json:"caution_clauses"`
	MissingClauses []string  `json:"missing_clauses"`
	ClauseCount    int       `json:"clauses_count"`
}
