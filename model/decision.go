package model

import "time"

// Moderation actions a decision record can instruct the gateway to take.
const (
	PunishNone    = "none"
	PunishWarning = "warning"
	PunishTimeout = "timeout"
	PunishBan     = "ban"
)

// DecisionRecord is the single authoritative output of the decision policy.
// It is produced once per triggering event and applied exactly once by the
// execution layer.
type DecisionRecord struct {
	ShouldPunish  bool          `json:"should_punish"`
	Action        string        `json:"action"`
	Duration      time.Duration `json:"duration"`
	Reason        string        `json:"reason"`
	Confidence    float64       `json:"confidence"`
	DeleteMessage bool          `json:"delete_message"`
	NotifyAdmins  bool          `json:"notify_admins"`

	// Degraded marks a decision whose ledger write failed; the action is
	// still executed but the audit trail may be incomplete.
	Degraded bool `json:"degraded,omitempty"`
}
