package trust

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the trust database and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	usersSchema := `CREATE TABLE IF NOT EXISTS users (
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          username TEXT NOT NULL DEFAULT '',
	          trust_score REAL NOT NULL DEFAULT 50,
	          reputation_score REAL NOT NULL DEFAULT 50,
	          total_messages INTEGER NOT NULL DEFAULT 0,
	          total_violations INTEGER NOT NULL DEFAULT 0,
	          warning_count INTEGER NOT NULL DEFAULT 0,
	          mute_count INTEGER NOT NULL DEFAULT 0,
	          kick_count INTEGER NOT NULL DEFAULT 0,
	          ban_count INTEGER NOT NULL DEFAULT 0,
	          timeout_count INTEGER NOT NULL DEFAULT 0,
	          tier TEXT NOT NULL DEFAULT 'NEWCOMER',
	          risk_level TEXT NOT NULL DEFAULT 'MEDIUM',
	          verified INTEGER NOT NULL DEFAULT 0,
	          moderator INTEGER NOT NULL DEFAULT 0,
	          first_seen INTEGER NOT NULL,
	          last_activity INTEGER NOT NULL,
	          active_hours TEXT NOT NULL DEFAULT '{}',
	          PRIMARY KEY (user_id, guild_id)
	      );`
	if _, err = db.Exec(usersSchema); err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	historySchema := `CREATE TABLE IF NOT EXISTS trust_history (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          old_score REAL NOT NULL,
	          new_score REAL NOT NULL,
	          delta REAL NOT NULL,
	          reason TEXT NOT NULL,
	          timestamp INTEGER NOT NULL
	      );
	      CREATE INDEX IF NOT EXISTS idx_trust_history_user ON trust_history (user_id, guild_id);`
	if _, err = db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create trust_history table: %w", err)
	}

	activitySchema := `CREATE TABLE IF NOT EXISTS activity_log (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          type TEXT NOT NULL,
	          data TEXT NOT NULL DEFAULT '',
	          channel_id TEXT NOT NULL DEFAULT '',
	          timestamp INTEGER NOT NULL
	      );
	      CREATE INDEX IF NOT EXISTS idx_activity_log_user ON activity_log (user_id, guild_id);`
	if _, err = db.Exec(activitySchema); err != nil {
		return nil, fmt.Errorf("failed to create activity_log table: %w", err)
	}

	return db, nil
}
