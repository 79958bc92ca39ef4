package ledger

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/model"
	"sentinel-bot/utils/database/trust"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := trust.Init(filepath.Join(t.TempDir(), "trust.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := New(db, model.TrustConfig{ViolationPenalty: 5, InactiveDays: 30, CacheSize: 128})
	require.NoError(t, err)
	return l
}

func msgEvent(userID string) model.MessageEvent {
	return model.MessageEvent{
		GuildID:   "g1",
		ChannelID: "c1",
		UserID:    userID,
		Username:  userID,
		Content:   "hello there",
		Timestamp: time.Now(),
	}
}

func TestGetOrCreateDefaults(t *testing.T) {
	l := newTestLedger(t)

	p, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.TrustScore)
	assert.Equal(t, model.TierNewcomer, p.Tier)
	assert.Equal(t, model.RiskMedium, p.RiskLevel)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	l := newTestLedger(t)

	first, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)
	second, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.FirstSeen, second.FirstSeen)

	count, err := trust.CountProfiles(l.db, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdjustTrustClampsAndAudits(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)

	p, err := l.AdjustTrust("alice", "g1", 20, "helpful report")
	require.NoError(t, err)
	assert.Equal(t, 70.0, p.TrustScore)

	p, err = l.AdjustTrust("alice", "g1", 500, "overflow")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.TrustScore)

	p, err = l.AdjustTrust("alice", "g1", -500, "underflow")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.TrustScore)

	count, err := trust.CountTrustHistory(l.db, "alice", "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "exactly one audit row per mutation")
}

func TestEveryMutationAppendsOneHistoryRow(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("bob", "g1", "bob")
	require.NoError(t, err)

	deltas := []float64{5, -3, 12, -40, 7, 0.5, -0.5, 100, -100, 1}
	for _, d := range deltas {
		_, err := l.AdjustTrust("bob", "g1", d, fmt.Sprintf("delta %.1f", d))
		require.NoError(t, err)
	}

	count, err := trust.CountTrustHistory(l.db, "bob", "g1")
	require.NoError(t, err)
	assert.Equal(t, len(deltas), count)
}

func TestApplyViolation(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("mallory", "g1", "mallory")
	require.NoError(t, err)

	p, err := l.ApplyViolation("mallory", "g1", model.PunishTimeout, model.SeverityHigh)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TimeoutCount)
	assert.Equal(t, 1, p.TotalViolations)
	assert.Equal(t, 35.0, p.TrustScore) // 50 - 5*3

	history, err := l.History("mallory", "g1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "violation: timeout", history[0].Reason)
	assert.Equal(t, -15.0, history[0].Delta)
}

func TestRepeatedViolationsRaiseRiskLevel(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("mallory", "g1", "mallory")
	require.NoError(t, err)

	var p *model.UserProfile
	for i := 0; i < 3; i++ {
		p, err = l.ApplyViolation("mallory", "g1", model.PunishTimeout, model.SeverityHigh)
		require.NoError(t, err)
	}
	assert.Equal(t, 5.0, p.TrustScore)
	assert.Equal(t, model.RiskHigh, p.RiskLevel)
}

func TestRecordActivity(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)

	require.NoError(t, l.RecordActivity(msgEvent("alice")))
	require.NoError(t, l.RecordActivity(msgEvent("alice")))

	p, err := l.Get("alice", "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalMessages)
	assert.NotEqual(t, "{}", p.ActiveHours)

	// Activity is not a trust mutation, so no audit rows.
	count, err := trust.CountTrustHistory(l.db, "alice", "g1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTrustedTierOverride(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("veteran-helper", "g1", "veteran-helper")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, l.RecordActivity(msgEvent("veteran-helper")))
	}
	p, err := l.AdjustTrust("veteran-helper", "g1", 40, "consistent helpfulness")
	require.NoError(t, err)
	assert.Equal(t, 90.0, p.TrustScore)
	assert.Equal(t, model.TierTrusted, p.Tier)
}

func TestProfileCacheStaysBounded(t *testing.T) {
	db, err := trust.Init(filepath.Join(t.TempDir(), "trust.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := New(db, model.TrustConfig{ViolationPenalty: 5, InactiveDays: 30, CacheSize: 8})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := l.GetOrCreate(fmt.Sprintf("member-%02d", i), "g1", "member")
		require.NoError(t, err)
	}
	assert.Equal(t, 8, l.cache.Len())

	// Every profile is still durable; evicted ones reload from the database.
	count, err := trust.CountProfiles(l.db, "g1")
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	p, err := l.Get("member-00", "g1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 50.0, p.TrustScore)
}

func TestReputationTracksActivityAndViolations(t *testing.T) {
	l := newTestLedger(t)

	p, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.ReputationScore)

	for i := 0; i < 40; i++ {
		require.NoError(t, l.RecordActivity(msgEvent("alice")))
	}
	p, err = l.Get("alice", "g1")
	require.NoError(t, err)
	assert.InDelta(t, 52.0, p.ReputationScore, 1e-9) // 50 + 40*0.05

	p, err = l.ApplyViolation("alice", "g1", model.PunishWarning, model.SeverityMedium)
	require.NoError(t, err)
	assert.InDelta(t, 49.0, p.ReputationScore, 1e-9) // activity bonus minus one violation
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.GetOrCreate("alice", "g1", "alice")
	require.NoError(t, err)

	l.db.Close()

	_, err = l.AdjustTrust("alice", "g1", 20, "after close")
	require.ErrorIs(t, err, ErrPersistence)

	// In-memory value is untouched.
	p, err := l.Get("alice", "g1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.TrustScore)
}
