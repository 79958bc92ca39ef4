package model

// Severity classifies how serious a single finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank maps a severity to a numeric factor used for trust penalties.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Finding is one unit of evidence produced by a detector about a single
// event. Findings are immutable and never persisted individually.
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Weight   float64  `json:"weight"`
	Detail   string   `json:"detail"`
}

// Well-known finding types. Detectors may emit additional ad-hoc types;
// these are the ones the policy layer and reports refer to by name.
const (
	FindingBlockedDomain      = "blocked_domain"
	FindingSuspiciousDomain   = "suspicious_domain"
	FindingIPLiteralURL       = "ip_literal_url"
	FindingDangerousFile      = "dangerous_file"
	FindingUnanalyzable       = "unanalyzable"
	FindingWalletAddress      = "wallet_address"
	FindingObfuscation        = "obfuscation"
	FindingBotLikeTiming      = "bot_like_timing"
	FindingUniformLength      = "uniform_length"
	FindingRepeatedLength     = "repeated_length"
	FindingAbnormalTyping     = "abnormal_typing_rate"
	FindingCommandFlood       = "command_flood"
	FindingMessageBurst       = "message_burst"
	FindingSuspiciousUsername = "suspicious_username"
	FindingNewAccount         = "new_account"
)
