package risk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"sentinel-bot/config"
	"sentinel-bot/model"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(config.DefaultPolicy().Risk)
}

func findingWithWeight(w float64) model.Finding {
	return model.Finding{Type: "test", Severity: model.SeverityMedium, Weight: w}
}

func TestScoreIsAlwaysClamped(t *testing.T) {
	agg := newTestAggregator()

	for n := 0; n <= 64; n += 8 {
		findings := make([]model.Finding, n)
		for i := range findings {
			findings[i] = findingWithWeight(0.9)
		}
		a := agg.Assess(findings, nil)
		assert.GreaterOrEqual(t, a.Score, 0.0, fmt.Sprintf("n=%d", n))
		assert.LessOrEqual(t, a.Score, 1.0, fmt.Sprintf("n=%d", n))
	}
}

func TestThresholdTable(t *testing.T) {
	agg := newTestAggregator()

	tests := []struct {
		score      float64
		wantLevel  model.ThreatLevel
		wantAction string
	}{
		{0.95, model.ThreatCritical, model.ActionImmediateBan},
		{0.9, model.ThreatCritical, model.ActionImmediateBan},
		{0.85, model.ThreatHigh, model.ActionTimeoutAndAlert},
		{0.75, model.ThreatHigh, model.ActionDeleteAndWarn},
		{0.6, model.ThreatMedium, model.ActionMonitorClosely},
		{0.35, model.ThreatLow, model.ActionLogActivity},
		{0.1, model.ThreatSafe, model.ActionNone},
		{0, model.ThreatSafe, model.ActionNone},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%.2f", tt.score), func(t *testing.T) {
			a := agg.Assess([]model.Finding{findingWithWeight(tt.score)}, nil)
			assert.Equal(t, tt.wantLevel, a.Level)
			assert.Equal(t, tt.wantAction, a.RecommendedAction)
		})
	}
}

func TestBlockAndAlertFlags(t *testing.T) {
	agg := newTestAggregator()

	a := agg.Assess([]model.Finding{findingWithWeight(0.7)}, nil)
	assert.True(t, a.ShouldBlock)
	assert.False(t, a.ShouldAlertAdmins)

	a = agg.Assess([]model.Finding{findingWithWeight(0.8)}, nil)
	assert.True(t, a.ShouldBlock)
	assert.True(t, a.ShouldAlertAdmins)

	a = agg.Assess([]model.Finding{findingWithWeight(0.5)}, nil)
	assert.False(t, a.ShouldBlock)
	assert.False(t, a.ShouldAlertAdmins)
}

func TestExternalScoreBlending(t *testing.T) {
	agg := newTestAggregator()

	external := 0.9
	a := agg.Assess([]model.Finding{findingWithWeight(0.5)}, &external)
	// base*(1-0.4) + external*0.4
	assert.InDelta(t, 0.5*0.6+0.9*0.4, a.Score, 1e-9)

	// No external score: base only.
	a = agg.Assess([]model.Finding{findingWithWeight(0.5)}, nil)
	assert.InDelta(t, 0.5, a.Score, 1e-9)
}

func TestFindingsContributeIndependently(t *testing.T) {
	agg := newTestAggregator()

	a := agg.Assess([]model.Finding{
		{Type: "scam", Weight: 0.6},
		{Type: "scam", Weight: 0.6},
	}, nil)
	assert.InDelta(t, 1.0, a.Score, 1e-9)
	assert.Equal(t, model.ThreatCritical, a.Level)
}

func TestNoFindingsIsSafe(t *testing.T) {
	agg := newTestAggregator()
	a := agg.Assess(nil, nil)
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, model.ThreatSafe, a.Level)
	assert.False(t, a.ShouldBlock)
}
