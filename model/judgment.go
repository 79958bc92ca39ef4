package model

// Judgment is the external judgment service's opinion about one message.
// The service replies with JSON, possibly wrapped in prose.
type Judgment struct {
	RiskScore         float64 `json:"risk_score"`
	Confidence        float64 `json:"confidence"`
	RecommendedAction string  `json:"recommended_action"`
	Severity          string  `json:"severity"`
	Reasoning         string  `json:"reasoning"`
}
