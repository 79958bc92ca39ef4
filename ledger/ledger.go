package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx"

	"sentinel-bot/model"
	"sentinel-bot/utils"
	"sentinel-bot/utils/database/trust"
)

// ErrPersistence marks a ledger mutation whose durable write failed. The
// in-memory state is rolled back; callers may treat the event as degraded.
var ErrPersistence = errors.New("ledger persistence failed")

const defaultTrustScore = 50

// Ledger is the authoritative per-user trust record: a write-through
// cache over the users/trust_history/activity_log tables. The cache is a
// bounded LRU; evicted profiles reload from the database on next access.
// Operations on the same (guild, user) key serialize; different keys run
// in parallel.
type Ledger struct {
	db    *sqlx.DB
	cfg   model.TrustConfig
	locks *utils.KeyedMutex
	cache *lru.Cache[string, *model.UserProfile]
}

func New(db *sqlx.DB, cfg model.TrustConfig) (*Ledger, error) {
	cache, err := lru.New[string, *model.UserProfile](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &Ledger{
		db:    db,
		cfg:   cfg,
		locks: utils.NewKeyedMutex(),
		cache: cache,
	}, nil
}

func key(userID, guildID string) string {
	return guildID + "/" + userID
}

func (l *Ledger) cacheGet(k string) *model.UserProfile {
	if p, ok := l.cache.Get(k); ok {
		return p
	}
	return nil
}

func (l *Ledger) cacheSet(k string, p *model.UserProfile) {
	l.cache.Add(k, p)
}

// GetOrCreate returns the existing profile for (user, guild) or creates
// one with the newcomer defaults. Idempotent: a second call for the same
// key returns the same entity.
func (l *Ledger) GetOrCreate(userID, guildID, username string) (*model.UserProfile, error) {
	k := key(userID, guildID)
	l.locks.Lock(k)
	defer l.locks.Unlock(k)

	profile, err := l.load(userID, guildID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		snap := *profile
		return &snap, nil
	}

	now := time.Now().Unix()
	fresh := &model.UserProfile{
		UserID:          userID,
		GuildID:         guildID,
		Username:        username,
		TrustScore:      defaultTrustScore,
		ReputationScore: defaultTrustScore,
		Tier:            model.TierNewcomer,
		RiskLevel:       model.RiskMedium,
		FirstSeen:       now,
		LastActivity:    now,
		ActiveHours:     "{}",
	}
	if err := trust.InsertUserProfile(l.db, fresh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	l.cacheSet(k, fresh)
	snap := *fresh
	return &snap, nil
}

// Get returns a snapshot of an existing profile, or nil when the user has
// never been observed.
func (l *Ledger) Get(userID, guildID string) (*model.UserProfile, error) {
	k := key(userID, guildID)
	l.locks.Lock(k)
	defer l.locks.Unlock(k)

	profile, err := l.load(userID, guildID)
	if err != nil || profile == nil {
		return nil, err
	}
	snap := *profile
	return &snap, nil
}

// load returns the cached profile, falling back to the database.
// Callers must hold the key lock.
func (l *Ledger) load(userID, guildID string) (*model.UserProfile, error) {
	k := key(userID, guildID)
	if p := l.cacheGet(k); p != nil {
		return p, nil
	}
	p, err := trust.GetUserProfile(l.db, userID, guildID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		l.cacheSet(k, p)
	}
	return p, nil
}

// AdjustTrust applies a clamped trust delta, appends exactly one audit
// row, and recomputes tier and risk level. On persistence failure the
// in-memory value is left untouched and ErrPersistence is returned.
func (l *Ledger) AdjustTrust(userID, guildID string, delta float64, reason string) (*model.UserProfile, error) {
	k := key(userID, guildID)
	l.locks.Lock(k)
	defer l.locks.Unlock(k)

	current, err := l.load(userID, guildID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no profile for %s/%s", guildID, userID)
	}

	next := *current
	applyTrustDelta(&next, delta)
	l.derive(&next)

	entry := historyEntry(current, &next, reason)
	if err := l.persist(&next, entry); err != nil {
		return nil, err
	}
	l.cacheSet(k, &next)
	snap := next
	return &snap, nil
}

// ApplyViolation bumps the violation counters and applies the trust
// penalty for the severity, all in one transaction with one audit row.
func (l *Ledger) ApplyViolation(userID, guildID, violationType string, severity model.Severity) (*model.UserProfile, error) {
	k := key(userID, guildID)
	l.locks.Lock(k)
	defer l.locks.Unlock(k)

	current, err := l.load(userID, guildID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no profile for %s/%s", guildID, userID)
	}

	next := *current
	switch violationType {
	case model.PunishWarning:
		next.WarningCount++
	case model.PunishTimeout:
		next.TimeoutCount++
	case model.PunishBan:
		next.BanCount++
	case "mute":
		next.MuteCount++
	case "kick":
		next.KickCount++
	}
	next.TotalViolations++

	applyTrustDelta(&next, -l.cfg.ViolationPenalty*float64(severity.Rank()))
	l.derive(&next)

	entry := historyEntry(current, &next, "violation: "+violationType)
	if err := l.persist(&next, entry); err != nil {
		return nil, err
	}
	l.cacheSet(k, &next)
	snap := next
	return &snap, nil
}

// RecordActivity updates the message counters, the hourly histogram and
// the activity log for one message event. No trust mutation, no audit row.
func (l *Ledger) RecordActivity(ev model.MessageEvent) error {
	k := key(ev.UserID, ev.GuildID)
	l.locks.Lock(k)
	defer l.locks.Unlock(k)

	current, err := l.load(ev.UserID, ev.GuildID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no profile for %s/%s", ev.GuildID, ev.UserID)
	}

	next := *current
	next.TotalMessages++
	next.LastActivity = ev.Timestamp.Unix()
	if ev.Username != "" {
		next.Username = ev.Username
	}
	next.ActiveHours = bumpHour(next.ActiveHours, ev.Timestamp.Hour())
	l.derive(&next)

	if err := l.persist(&next, nil); err != nil {
		return err
	}
	l.cacheSet(k, &next)

	logEntry := &model.ActivityLogEntry{
		UserID:    ev.UserID,
		GuildID:   ev.GuildID,
		Type:      "message",
		Data:      fmt.Sprintf(`{"length":%d}`, len([]rune(ev.Content))),
		ChannelID: ev.ChannelID,
		Timestamp: ev.Timestamp.Unix(),
	}
	if err := trust.InsertActivityLog(l.db, logEntry); err != nil {
		log.Printf("Failed to write activity log for %s: %v", k, err)
	}
	return nil
}

// RecordJoin logs a join event; the profile itself is created by the
// engine's GetOrCreate call.
func (l *Ledger) RecordJoin(ev model.JoinEvent) error {
	entry := &model.ActivityLogEntry{
		UserID:    ev.UserID,
		GuildID:   ev.GuildID,
		Type:      "join",
		Timestamp: ev.Timestamp.Unix(),
	}
	if err := trust.InsertActivityLog(l.db, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// History returns the most recent trust audit rows for a user.
func (l *Ledger) History(userID, guildID string, limit int) ([]model.TrustHistoryEntry, error) {
	return trust.GetTrustHistory(l.db, userID, guildID, limit)
}

// TrackedUsers returns the number of profiles in a guild (all guilds when
// guildID is empty).
func (l *Ledger) TrackedUsers(guildID string) (int, error) {
	return trust.CountProfiles(l.db, guildID)
}

// persist writes the profile row and, when entry is non-nil, the audit
// row in one transaction. Any failure maps to ErrPersistence.
func (l *Ledger) persist(profile *model.UserProfile, entry *model.TrustHistoryEntry) error {
	tx, err := l.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := trust.UpdateUserProfileTx(tx, profile); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if entry != nil {
		if err := trust.InsertTrustHistoryTx(tx, entry); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func applyTrustDelta(p *model.UserProfile, delta float64) {
	score := p.TrustScore + delta
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	p.TrustScore = score
}

func historyEntry(old, next *model.UserProfile, reason string) *model.TrustHistoryEntry {
	return &model.TrustHistoryEntry{
		UserID:    next.UserID,
		GuildID:   next.GuildID,
		OldScore:  old.TrustScore,
		NewScore:  next.TrustScore,
		Delta:     next.TrustScore - old.TrustScore,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
}

// bumpHour increments one bucket of the JSON hour histogram.
func bumpHour(histogram string, hour int) string {
	counts := make(map[string]int)
	if histogram != "" {
		if err := json.Unmarshal([]byte(histogram), &counts); err != nil {
			counts = make(map[string]int)
		}
	}
	counts[strconv.Itoa(hour)]++
	out, err := json.Marshal(counts)
	if err != nil {
		return histogram
	}
	return string(out)
}
