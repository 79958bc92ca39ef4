package trust

import (
	"database/sql"
	"errors"
	"fmt"
	"sentinel-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetUserProfile fetches one profile, or nil when none exists yet.
func GetUserProfile(db *sqlx.DB, userID, guildID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	query := "SELECT * FROM users WHERE user_id = ? AND guild_id = ?"
	err := db.Get(&profile, query, userID, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile %s/%s: %w", guildID, userID, err)
	}
	return &profile, nil
}

// InsertUserProfile writes a brand new profile row.
func InsertUserProfile(db *sqlx.DB, profile *model.UserProfile) error {
	query := `INSERT INTO users (user_id, guild_id, username, trust_score, reputation_score,
	          total_messages, total_violations, warning_count, mute_count, kick_count, ban_count, timeout_count,
	          tier, risk_level, verified, moderator, first_seen, last_activity, active_hours)
	          VALUES (:user_id, :guild_id, :username, :trust_score, :reputation_score,
	          :total_messages, :total_violations, :warning_count, :mute_count, :kick_count, :ban_count, :timeout_count,
	          :tier, :risk_level, :verified, :moderator, :first_seen, :last_activity, :active_hours)`
	if _, err := db.NamedExec(query, profile); err != nil {
		return fmt.Errorf("failed to insert user profile %s/%s: %w", profile.GuildID, profile.UserID, err)
	}
	return nil
}

// UpdateUserProfileTx updates the full profile row inside a transaction.
func UpdateUserProfileTx(tx *sqlx.Tx, profile *model.UserProfile) error {
	query := `UPDATE users SET username = :username, trust_score = :trust_score,
	          reputation_score = :reputation_score,
	          total_messages = :total_messages, total_violations = :total_violations,
	          warning_count = :warning_count, mute_count = :mute_count, kick_count = :kick_count,
	          ban_count = :ban_count, timeout_count = :timeout_count, tier = :tier,
	          risk_level = :risk_level, verified = :verified, moderator = :moderator,
	          first_seen = :first_seen, last_activity = :last_activity, active_hours = :active_hours
	          WHERE user_id = :user_id AND guild_id = :guild_id`
	if _, err := tx.NamedExec(query, profile); err != nil {
		return fmt.Errorf("failed to update user profile %s/%s: %w", profile.GuildID, profile.UserID, err)
	}
	return nil
}

// InsertTrustHistoryTx appends one audit row inside the same transaction
// as the profile update it records.
func InsertTrustHistoryTx(tx *sqlx.Tx, entry *model.TrustHistoryEntry) error {
	query := `INSERT INTO trust_history (user_id, guild_id, old_score, new_score, delta, reason, timestamp)
	          VALUES (:user_id, :guild_id, :old_score, :new_score, :delta, :reason, :timestamp)`
	if _, err := tx.NamedExec(query, entry); err != nil {
		return fmt.Errorf("failed to insert trust history for %s/%s: %w", entry.GuildID, entry.UserID, err)
	}
	return nil
}

// GetTrustHistory returns the most recent audit rows for a user, newest
// first.
func GetTrustHistory(db *sqlx.DB, userID, guildID string, limit int) ([]model.TrustHistoryEntry, error) {
	var entries []model.TrustHistoryEntry
	query := "SELECT * FROM trust_history WHERE user_id = ? AND guild_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?"
	if err := db.Select(&entries, query, userID, guildID, limit); err != nil {
		return nil, fmt.Errorf("failed to get trust history for %s/%s: %w", guildID, userID, err)
	}
	return entries, nil
}

// CountTrustHistory returns the total number of audit rows for a user.
func CountTrustHistory(db *sqlx.DB, userID, guildID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM trust_history WHERE user_id = ? AND guild_id = ?"
	if err := db.Get(&count, query, userID, guildID); err != nil {
		return 0, fmt.Errorf("failed to count trust history for %s/%s: %w", guildID, userID, err)
	}
	return count, nil
}

// InsertActivityLog appends one activity row.
func InsertActivityLog(db *sqlx.DB, entry *model.ActivityLogEntry) error {
	query := `INSERT INTO activity_log (user_id, guild_id, type, data, channel_id, timestamp)
	          VALUES (:user_id, :guild_id, :type, :data, :channel_id, :timestamp)`
	if _, err := db.NamedExec(query, entry); err != nil {
		return fmt.Errorf("failed to insert activity log for %s/%s: %w", entry.GuildID, entry.UserID, err)
	}
	return nil
}

// CountProfiles returns the number of tracked users in a guild, or across
// all guilds when guildID is empty.
func CountProfiles(db *sqlx.DB, guildID string) (int, error) {
	var count int
	var err error
	if guildID == "" {
		err = db.Get(&count, "SELECT COUNT(*) FROM users")
	} else {
		err = db.Get(&count, "SELECT COUNT(*) FROM users WHERE guild_id = ?", guildID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count user profiles: %w", err)
	}
	return count, nil
}
