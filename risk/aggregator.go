package risk

import (
	"sort"

	"sentinel-bot/model"
)

// Aggregator folds detector findings, and optionally an external
// judgment score, into one clamped risk score with a discrete level and
// recommended action. All thresholds come from policy config.
type Aggregator struct {
	cfg model.RiskConfig
}

func NewAggregator(cfg model.RiskConfig) *Aggregator {
	a := &Aggregator{cfg: cfg}
	// Highest bound first so the first matching rule wins.
	sort.Slice(a.cfg.Thresholds, func(i, j int) bool {
		return a.cfg.Thresholds[i].Score > a.cfg.Thresholds[j].Score
	})
	return a
}

// Assess sums finding weights, blends in the external score when present
// and clamps to [0,1]. Each finding contributes independently; duplicate
// categories are not discounted.
func (a *Aggregator) Assess(findings []model.Finding, external *float64) model.RiskAssessment {
	base := 0.0
	for _, f := range findings {
		base += f.Weight
	}

	score := base
	if external != nil {
		score = base*(1-a.cfg.BlendWeight) + *external*a.cfg.BlendWeight
	}
	score = clamp(score)

	level, action := a.classify(score)
	return model.RiskAssessment{
		Findings:          findings,
		Score:             score,
		Level:             level,
		RecommendedAction: action,
		ShouldBlock:       score >= a.cfg.BlockThreshold,
		ShouldAlertAdmins: score >= a.cfg.AlertThreshold,
		ExternalScore:     external,
	}
}

func (a *Aggregator) classify(score float64) (model.ThreatLevel, string) {
	for _, rule := range a.cfg.Thresholds {
		if score >= rule.Score {
			return model.ThreatLevel(rule.Level), rule.Action
		}
	}
	return model.ThreatSafe, model.ActionNone
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
