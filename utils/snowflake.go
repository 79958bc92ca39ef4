package utils

import (
	"strconv"
	"time"
)

const discordEpochMs = 1420070400000

// SnowflakeTime extracts the creation time embedded in a Discord
// snowflake ID. Returns the zero time for unparseable IDs.
func SnowflakeTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	ms := int64(n>>22) + discordEpochMs
	return time.UnixMilli(ms)
}
