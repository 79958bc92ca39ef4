package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/behavior"
	"sentinel-bot/config"
	"sentinel-bot/detector"
	"sentinel-bot/ledger"
	"sentinel-bot/model"
	"sentinel-bot/policy"
	"sentinel-bot/risk"
	"sentinel-bot/utils/database/trust"
)

func newTestEngine(t *testing.T, judgeClient Judge) *Engine {
	t.Helper()
	policyCfg := config.DefaultPolicy()

	db, err := trust.Init(filepath.Join(t.TempDir(), "trust.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalogs, err := detector.NewStore("")
	require.NoError(t, err)

	tracker, err := behavior.NewTracker(policyCfg.Behavior.CacheSize)
	require.NoError(t, err)

	trustLedger, err := ledger.New(db, policyCfg.Trust)
	require.NoError(t, err)

	return New(
		catalogs,
		tracker,
		behavior.NewRaidDetector(policyCfg.Raid),
		risk.NewAggregator(policyCfg.Risk),
		trustLedger,
		policy.New(policyCfg.Decision),
		judgeClient,
	)
}

func message(userID, content string) model.MessageEvent {
	return model.MessageEvent{
		MessageID: "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		UserID:    userID,
		Username:  userID,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func TestBlocklistedDomainIsBlocked(t *testing.T) {
	eng := newTestEngine(t, nil)

	assessment, record, err := eng.ProcessMessage(context.Background(),
		message("mallory", "click https://grabify.link/win for a prize"))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, assessment.Score, 0.7)
	assert.True(t, assessment.ShouldBlock)
	assert.True(t, record.ShouldPunish)
	assert.Equal(t, model.PunishTimeout, record.Action)
	assert.True(t, record.DeleteMessage)
	assert.False(t, record.Degraded)
}

func TestCleanMessageIsNotPunished(t *testing.T) {
	eng := newTestEngine(t, nil)

	assessment, record, err := eng.ProcessMessage(context.Background(),
		message("alice", "good morning! anyone up for a game later?"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, assessment.Score)
	assert.False(t, record.ShouldPunish)
	assert.Equal(t, model.PunishNone, record.Action)
}

func TestPunishmentUpdatesLedger(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, record, err := eng.ProcessMessage(context.Background(),
		message("mallory", "click https://grabify.link/win for a prize"))
	require.NoError(t, err)
	require.True(t, record.ShouldPunish)

	profile, err := eng.Ledger().Get("mallory", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalViolations)
	assert.Equal(t, 1, profile.TimeoutCount)
	assert.Less(t, profile.TrustScore, 50.0)
}

func TestRepeatOffenderIsEscalated(t *testing.T) {
	eng := newTestEngine(t, nil)

	var record *model.DecisionRecord
	var err error
	for i := 0; i < 4; i++ {
		ev := message("mallory", "click https://grabify.link/win for a prize")
		ev.Timestamp = time.Now().Add(time.Duration(i) * time.Hour)
		_, record, err = eng.ProcessMessage(context.Background(), ev)
		require.NoError(t, err)
	}

	assert.Equal(t, model.PunishBan, record.Action)
	assert.True(t, record.NotifyAdmins)
}

func TestProcessJoinDetectsRaid(t *testing.T) {
	eng := newTestEngine(t, nil)
	base := time.Now()

	var signal *model.RaidSignal
	for i := 0; i < 10; i++ {
		ev := model.JoinEvent{
			GuildID:   "g1",
			UserID:    "joiner-" + string(rune('a'+i)),
			Username:  "joiner",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		var err error
		signal, err = eng.ProcessJoin(context.Background(), ev)
		require.NoError(t, err)
	}

	assert.True(t, signal.IsRaid)
	assert.Equal(t, 10, signal.RecentJoins)
	assert.Equal(t, int64(1), eng.Stats().RaidsDetected)
}

func TestJoinScreeningFlagsThrowawayAccounts(t *testing.T) {
	eng := newTestEngine(t, nil)
	now := time.Now()

	signal, err := eng.ProcessJoin(context.Background(), model.JoinEvent{
		GuildID:        "g1",
		UserID:         "fresh-join",
		Username:       "user12345",
		AccountCreated: now.Add(-2 * time.Hour),
		Timestamp:      now,
	})
	require.NoError(t, err)
	assert.False(t, signal.IsRaid)

	types := make(map[string]model.Finding)
	for _, f := range signal.Findings {
		types[f.Type] = f
	}
	require.Contains(t, types, model.FindingSuspiciousUsername)
	require.Contains(t, types, model.FindingNewAccount)
	assert.Equal(t, model.SeverityHigh, types[model.FindingNewAccount].Severity)

	signal, err = eng.ProcessJoin(context.Background(), model.JoinEvent{
		GuildID:        "g1",
		UserID:         "old-hand",
		Username:       "margaret",
		AccountCreated: now.Add(-400 * 24 * time.Hour),
		Timestamp:      now,
	})
	require.NoError(t, err)
	assert.Empty(t, signal.Findings)
}

type stubJudge struct {
	judgment model.Judgment
	calls    int
}

func (s *stubJudge) Judge(ctx context.Context, text, userContext, guildContext string) (*model.Judgment, error) {
	s.calls++
	return &s.judgment, nil
}

func TestJudgeBanRecommendationOverrides(t *testing.T) {
	stub := &stubJudge{judgment: model.Judgment{
		RiskScore:         0.95,
		Confidence:        0.9,
		RecommendedAction: model.PunishBan,
		Reasoning:         "spear phishing",
	}}
	eng := newTestEngine(t, stub)

	_, record, err := eng.ProcessMessage(context.Background(),
		message("mallory", "click https://grabify.link/win for a prize"))
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, model.PunishBan, record.Action)
	assert.True(t, record.NotifyAdmins)
}

func TestJudgeNotCalledForQuietContent(t *testing.T) {
	stub := &stubJudge{}
	eng := newTestEngine(t, stub)

	_, _, err := eng.ProcessMessage(context.Background(),
		message("alice", "good morning! anyone up for a game later?"))
	require.NoError(t, err)
	assert.Equal(t, 0, stub.calls)
}

func TestStatsCounters(t *testing.T) {
	eng := newTestEngine(t, nil)

	contents := []string{"hey", "anyone around tonight?", "I finished the build finally"}
	for i, c := range contents {
		ev := message("alice", c)
		ev.Timestamp = time.Now().Add(time.Duration(i) * time.Minute)
		_, _, err := eng.ProcessMessage(context.Background(), ev)
		require.NoError(t, err)
	}
	_, _, err := eng.ProcessMessage(context.Background(),
		message("mallory", "click https://grabify.link/win for a prize"))
	require.NoError(t, err)

	stats := eng.Stats()
	assert.Equal(t, int64(4), stats.MessagesProcessed)
	assert.Equal(t, int64(1), stats.ThreatsDetected)
	assert.Equal(t, int64(1), stats.ActionsTaken)
}
