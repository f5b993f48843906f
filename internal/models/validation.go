package models

// ValidationKind classifies a validated document.
type ValidationKind string

const (
	KindValidStatement ValidationKind = "valid_statement"
	KindWrongDocument  ValidationKind = "wrong_document"
	KindAnalysisError  ValidationKind = "analysis_error"
)

// HeuristicCounters are the raw validator measurements.
type HeuristicCounters struct {
	BankingKeywords int     `json:"banking_keywords"`
	Dates           int     `json:"dates"`
	Currency        int     `json:"currency"`
	TextDensity     float64 `json:"text_density"`
}

// ValidationResult is the validator verdict for one Document.
type ValidationResult struct {
	Document   string             `json:"document"`
	IsValid    bool               `json:"is_valid"`
	Kind       ValidationKind     `json:"kind"`
	Confidence Confidence         `json:"confidence"`
	Message    string             `json:"message"`
	Warning    string             `json:"warning,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`
	Counters   HeuristicCounters  `json:"counters"`
	Metadata   *StatementMetadata `json:"metadata,omitempty"`
}
