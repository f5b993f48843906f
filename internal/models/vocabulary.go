package models

// Vocabulary is the domain vocabulary shared by the validator and the
// transaction parser. NoisePhrases mark header lines the parser must not turn
// into transactions; when empty the parser keeps its built-in list.
type Vocabulary struct {
	BankingKeywords    []string `yaml:"banking_keywords" json:"banking_keywords"`
	CurrencyIndicators []string `yaml:"currency_indicators" json:"currency_indicators"`
	NoisePhrases       []string `yaml:"noise_phrases,omitempty" json:"noise_phrases,omitempty"`
}
