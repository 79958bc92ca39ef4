package model

// ThreatLevel is the discrete classification of an aggregated risk score.
type ThreatLevel string

const (
	ThreatSafe     ThreatLevel = "SAFE"
	ThreatLow      ThreatLevel = "LOW"
	ThreatMedium   ThreatLevel = "MEDIUM"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatCritical ThreatLevel = "CRITICAL"
)

// Recommended actions produced by the aggregator's threshold table.
const (
	ActionNone            = "none"
	ActionLogActivity     = "log_activity"
	ActionMonitorClosely  = "monitor_closely"
	ActionDeleteAndWarn   = "delete_and_warn"
	ActionTimeoutAndAlert = "timeout_and_alert"
	ActionImmediateBan    = "immediate_ban"
)

// RiskAssessment is the per-event aggregate produced from all findings
// (and optionally an external judgment score). Transient, never persisted.
type RiskAssessment struct {
	Findings          []Finding   `json:"findings"`
	Score             float64     `json:"score"`
	Level             ThreatLevel `json:"level"`
	RecommendedAction string      `json:"recommended_action"`
	ShouldBlock       bool        `json:"should_block"`
	ShouldAlertAdmins bool        `json:"should_alert_admins"`
	ExternalScore     *float64    `json:"external_score,omitempty"`
}

// TopFinding returns the highest-weight finding, or nil when there are none.
func (a *RiskAssessment) TopFinding() *Finding {
	var top *Finding
	for i := range a.Findings {
		if top == nil || a.Findings[i].Weight > top.Weight {
			top = &a.Findings[i]
		}
	}
	return top
}

// RaidSignal is returned for every join event. Findings carries the
// screening results for the joining member itself (suspicious username,
// freshly created account) independent of the guild-wide raid verdict.
type RaidSignal struct {
	IsRaid      bool      `json:"is_raid"`
	RecentJoins int       `json:"recent_joins"`
	Threshold   int       `json:"threshold"`
	WindowSecs  int       `json:"window_secs"`
	GuildID     string    `json:"guild_id"`
	Findings    []Finding `json:"findings,omitempty"`
}
