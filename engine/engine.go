package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"sentinel-bot/behavior"
	"sentinel-bot/detector"
	"sentinel-bot/judge"
	"sentinel-bot/ledger"
	"sentinel-bot/model"
	"sentinel-bot/policy"
	"sentinel-bot/risk"
	"sentinel-bot/utils"
)

// Judge is the slice of the judge client the engine needs; nil disables
// external judgment entirely.
type Judge interface {
	Judge(ctx context.Context, text, userContext, guildContext string) (*model.Judgment, error)
}

// Engine wires the full pipeline: tracker update, pure detectors,
// optional external judgment, aggregation, policy decision and ledger
// updates. Events for the same (guild, user) key process in arrival
// order; unrelated users run in parallel.
type Engine struct {
	catalogs   *detector.Store
	tracker    *behavior.Tracker
	raid       *behavior.RaidDetector
	aggregator *risk.Aggregator
	ledger     *ledger.Ledger
	policy     *policy.Policy
	judge      Judge
	locks      *utils.KeyedMutex

	messagesProcessed atomic.Int64
	joinsProcessed    atomic.Int64
	threatsDetected   atomic.Int64
	actionsTaken      atomic.Int64
	raidsDetected     atomic.Int64
	degradedEvents    atomic.Int64
	judgeCalls        atomic.Int64
}

// New assembles an engine from its components. judgeClient may be nil.
func New(catalogs *detector.Store, tracker *behavior.Tracker, raid *behavior.RaidDetector,
	aggregator *risk.Aggregator, l *ledger.Ledger, p *policy.Policy, judgeClient Judge) *Engine {
	return &Engine{
		catalogs:   catalogs,
		tracker:    tracker,
		raid:       raid,
		aggregator: aggregator,
		ledger:     l,
		policy:     p,
		judge:      judgeClient,
		locks:      utils.NewKeyedMutex(),
	}
}

// Catalogs exposes the detector catalog store for scheduled refresh.
func (e *Engine) Catalogs() *detector.Store {
	return e.catalogs
}

// Ledger exposes the trust ledger for reporting commands.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// Tracker exposes the behavior tracker for status reporting.
func (e *Engine) Tracker() *behavior.Tracker {
	return e.tracker
}

// ProcessMessage runs the full pipeline for one message event and returns
// the assessment plus the decision record for the caller to execute.
func (e *Engine) ProcessMessage(ctx context.Context, ev model.MessageEvent) (*model.RiskAssessment, *model.DecisionRecord, error) {
	lockKey := ev.GuildID + "/" + ev.UserID
	e.locks.Lock(lockKey)
	defer e.locks.Unlock(lockKey)

	e.messagesProcessed.Add(1)
	cat := e.catalogs.Current()

	findings := e.tracker.RecordMessage(ev)
	findings = append(findings, detector.ScanMessage(cat, ev.Content)...)
	for _, att := range ev.Attachments {
		findings = append(findings, detector.ScanAttachment(cat, att)...)
	}
	findings = append(findings, e.raid.OnMessage(ev.GuildID, ev.Timestamp)...)

	profile, err := e.ledger.GetOrCreate(ev.UserID, ev.GuildID, ev.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile for %s: %w", lockKey, err)
	}

	judgment, external := e.consultJudge(ctx, ev, profile, len(findings) > 0, cat.TriggerKeywords)

	assessment := e.aggregator.Assess(findings, external)
	record := e.policy.Decide(&assessment, profile, judgment)

	if assessment.Score > 0.3 {
		e.threatsDetected.Add(1)
	}

	degraded := false
	if record.ShouldPunish {
		e.actionsTaken.Add(1)
		if _, err := e.ledger.ApplyViolation(ev.UserID, ev.GuildID, record.Action, topSeverity(findings)); err != nil {
			if !errors.Is(err, ledger.ErrPersistence) {
				return &assessment, &record, err
			}
			degraded = true
		}
	} else {
		if err := e.ledger.RecordActivity(ev); err != nil {
			if !errors.Is(err, ledger.ErrPersistence) {
				return &assessment, &record, err
			}
			degraded = true
		}
	}

	if degraded {
		e.degradedEvents.Add(1)
		record.Degraded = true
		log.Printf("Degraded decision for %s: action %s not durably recorded", lockKey, record.Action)
	}

	return &assessment, &record, nil
}

// ProcessJoin records one member join: profile creation, activity log,
// the per-guild raid window, and screening of the member itself.
func (e *Engine) ProcessJoin(ctx context.Context, ev model.JoinEvent) (*model.RaidSignal, error) {
	e.joinsProcessed.Add(1)

	if _, err := e.ledger.GetOrCreate(ev.UserID, ev.GuildID, ev.Username); err != nil {
		log.Printf("Failed to create profile on join for %s/%s: %v", ev.GuildID, ev.UserID, err)
	}
	if err := e.ledger.RecordJoin(ev); err != nil {
		log.Printf("Failed to log join for %s/%s: %v", ev.GuildID, ev.UserID, err)
	}

	signal := e.raid.OnJoin(ev.GuildID, ev.Timestamp)
	if signal.IsRaid {
		e.raidsDetected.Add(1)
	}

	signal.Findings = append(signal.Findings, detector.ScanUsername(e.catalogs.Current(), ev.Username)...)
	if f := accountAgeFinding(ev); f != nil {
		signal.Findings = append(signal.Findings, *f)
	}
	return &signal, nil
}

// accountAgeFinding flags accounts created shortly before joining. A zero
// creation time (non-snowflake ID) yields nothing.
func accountAgeFinding(ev model.JoinEvent) *model.Finding {
	if ev.AccountCreated.IsZero() {
		return nil
	}
	age := ev.Timestamp.Sub(ev.AccountCreated)
	switch {
	case age < 24*time.Hour:
		return &model.Finding{
			Type:     model.FindingNewAccount,
			Severity: model.SeverityHigh,
			Weight:   0.5,
			Detail:   "account created less than a day before joining",
		}
	case age < 7*24*time.Hour:
		return &model.Finding{
			Type:     model.FindingNewAccount,
			Severity: model.SeverityMedium,
			Weight:   0.3,
			Detail:   fmt.Sprintf("account is %d days old", int(age.Hours()/24)),
		}
	}
	return nil
}

// consultJudge calls the external judgment service when it is configured
// and the content is worth analyzing. Judge failures degrade to nil.
func (e *Engine) consultJudge(ctx context.Context, ev model.MessageEvent, profile *model.UserProfile,
	hasFindings bool, triggerKeywords []string) (*model.Judgment, *float64) {
	if e.judge == nil || ev.Content == "" {
		return nil, nil
	}
	if !judge.ShouldAnalyze(ev.Content, hasFindings, triggerKeywords) {
		return nil, nil
	}

	e.judgeCalls.Add(1)
	userCtx := fmt.Sprintf("trust=%.0f tier=%s violations=%d", profile.TrustScore, profile.Tier, profile.TotalViolations)
	judgment, err := e.judge.Judge(ctx, ev.Content, userCtx, ev.GuildID)
	if err != nil {
		log.Printf("Judge call failed for %s/%s: %v", ev.GuildID, ev.UserID, err)
		return nil, nil
	}
	score := judgment.RiskScore
	return judgment, &score
}

// Stats returns a point-in-time snapshot of the engine counters.
func (e *Engine) Stats() model.EngineStats {
	return model.EngineStats{
		MessagesProcessed: e.messagesProcessed.Load(),
		JoinsProcessed:    e.joinsProcessed.Load(),
		ThreatsDetected:   e.threatsDetected.Load(),
		ActionsTaken:      e.actionsTaken.Load(),
		RaidsDetected:     e.raidsDetected.Load(),
		DegradedEvents:    e.degradedEvents.Load(),
		JudgeCalls:        e.judgeCalls.Load(),
	}
}

func topSeverity(findings []model.Finding) model.Severity {
	top := model.SeverityLow
	for _, f := range findings {
		if f.Severity.Rank() > top.Rank() {
			top = f.Severity
		}
	}
	return top
}
