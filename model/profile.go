package model

// User tiers, derived from account age and overridden upward by trust
// and permission flags. Never set directly outside the recomputation step.
const (
	TierNewcomer  = "NEWCOMER"
	TierMember    = "MEMBER"
	TierRegular   = "REGULAR"
	TierVeteran   = "VETERAN"
	TierVIP       = "VIP"
	TierTrusted   = "TRUSTED"
	TierModerator = "MODERATOR"
)

// Risk-level bands derived from the weighted user risk formula.
const (
	RiskVeryLow  = "VERY_LOW"
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskVeryHigh = "VERY_HIGH"
	RiskCritical = "CRITICAL"
)

// UserProfile is the authoritative, persisted per-user trust record.
// The database table is named 'users', keyed by (user_id, guild_id).
type UserProfile struct {
	UserID           string  `db:"user_id"`
	GuildID          string  `db:"guild_id"`
	Username         string  `db:"username"`
	TrustScore       float64 `db:"trust_score"`
	ReputationScore  float64 `db:"reputation_score"`
	TotalMessages    int     `db:"total_messages"`
	TotalViolations  int     `db:"total_violations"`
	WarningCount     int     `db:"warning_count"`
	MuteCount        int     `db:"mute_count"`
	KickCount        int     `db:"kick_count"`
	BanCount         int     `db:"ban_count"`
	TimeoutCount     int     `db:"timeout_count"`
	Tier             string  `db:"tier"`
	RiskLevel        string  `db:"risk_level"`
	Verified         bool    `db:"verified"`
	Moderator        bool    `db:"moderator"`
	FirstSeen        int64   `db:"first_seen"`
	LastActivity     int64   `db:"last_activity"`
	ActiveHours      string  `db:"active_hours"` // JSON map of hour -> message count
}

// TrustHistoryEntry is one row of the append-only trust audit trail.
// Exactly one row is written per trust-score mutation.
type TrustHistoryEntry struct {
	ID        int64   `db:"id"`
	UserID    string  `db:"user_id"`
	GuildID   string  `db:"guild_id"`
	OldScore  float64 `db:"old_score"`
	NewScore  float64 `db:"new_score"`
	Delta     float64 `db:"delta"`
	Reason    string  `db:"reason"`
	Timestamp int64   `db:"timestamp"`
}

// ActivityLogEntry is one row of the per-user activity log.
type ActivityLogEntry struct {
	ID        int64  `db:"id"`
	UserID    string `db:"user_id"`
	GuildID   string `db:"guild_id"`
	Type      string `db:"type"`
	Data      string `db:"data"`
	ChannelID string `db:"channel_id"`
	Timestamp int64  `db:"timestamp"`
}
