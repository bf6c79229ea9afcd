package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// TimestampIndexEntry is a parsed idx:ts:<kind>:<padded_ts>:<id> key.
type TimestampIndexEntry struct {
	Kind Kind
	TS   int64
	ID   string
}

// ParseTimestampIndexKey parses an idx:ts:<kind>:<padded_ts>:<id> key.
func ParseTimestampIndexKey(key string) (TimestampIndexEntry, error) {
	parts := strings.SplitN(key, ":", 5)
	if len(parts) != 5 || parts[0] != "idx" || parts[1] != "ts" {
		return TimestampIndexEntry{}, fmt.Errorf("malformed timestamp index key: %q", key)
	}
	ts, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return TimestampIndexEntry{}, fmt.Errorf("malformed timestamp in index key %q: %w", key, err)
	}
	return TimestampIndexEntry{Kind: Kind(parts[2]), TS: ts, ID: parts[4]}, nil
}

// ParseStatusTimelineIndexKey parses idx:tl:s:<status_id>:<timeline_id>.
func ParseStatusTimelineIndexKey(key string) (statusID, timelineID string, err error) {
	parts := strings.SplitN(key, ":", 5)
	if len(parts) != 5 || parts[0] != "idx" || parts[1] != "tl" || parts[2] != "s" {
		return "", "", fmt.Errorf("malformed status timeline index key: %q", key)
	}
	return parts[3], parts[4], nil
}

// ParseNotificationTimelineIndexKey parses idx:tl:n:<notification_id>:<timeline_id>.
func ParseNotificationTimelineIndexKey(key string) (notificationID, timelineID string, err error) {
	parts := strings.SplitN(key, ":", 5)
	if len(parts) != 5 || parts[0] != "idx" || parts[1] != "tl" || parts[2] != "n" {
		return "", "", fmt.Errorf("malformed notification timeline index key: %q", key)
	}
	return parts[3], parts[4], nil
}
