package policy

import (
	"fmt"
	"time"

	"sentinel-bot/model"
)

// Policy maps an aggregated assessment plus ledger state to a moderation
// decision. Rules are evaluated in order and only ever escalate.
type Policy struct {
	cfg model.DecisionConfig
}

func New(cfg model.DecisionConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Decide produces the decision record for one event. It performs no side
// effects; the caller executes the record exactly once and updates the
// ledger's violation counters when a punishment was decided.
func (p *Policy) Decide(assessment *model.RiskAssessment, profile *model.UserProfile, judgment *model.Judgment) model.DecisionRecord {
	record := model.DecisionRecord{Action: model.PunishNone}

	if assessment.ShouldBlock {
		record.ShouldPunish = true
		record.Action = model.PunishTimeout
		record.Duration = time.Duration(p.cfg.TimeoutMinutes) * time.Minute
		record.DeleteMessage = true
		record.Confidence = 0.9
		record.Reason = "high risk content"
		if top := assessment.TopFinding(); top != nil {
			record.Reason = fmt.Sprintf("high risk content: %s", top.Type)
		}
	}

	if judgment != nil && judgment.RecommendedAction == model.PunishBan {
		record.ShouldPunish = true
		record.Action = model.PunishBan
		record.Duration = 0
		record.DeleteMessage = true
		record.NotifyAdmins = true
		record.Confidence = judgment.Confidence
		if judgment.Reasoning != "" {
			record.Reason = judgment.Reasoning
		}
	}

	// Repeat offenders skip straight to a ban.
	if profile != nil && profile.TotalViolations >= p.cfg.EscalationThreshold &&
		(record.Action == model.PunishWarning || record.Action == model.PunishTimeout) {
		record.Action = model.PunishBan
		record.Duration = 0
		record.NotifyAdmins = true
		record.Reason = fmt.Sprintf("%s (escalated after %d violations)", record.Reason, profile.TotalViolations)
	}

	if assessment.ShouldAlertAdmins && record.ShouldPunish {
		record.NotifyAdmins = true
	}

	return record
}
