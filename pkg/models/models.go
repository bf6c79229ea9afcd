package models

// Records cached locally per instance. Timestamp is unix milliseconds,
// assigned at ingestion and used only for retention; it is independent of
// the record's id.

type Status struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	StatusID  string `json:"status_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Account struct {
	ID        string `json:"id"`
	Acct      string `json:"acct,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Relationship is keyed by the account id it describes.
type Relationship struct {
	ID         string `json:"id"`
	Following  bool   `json:"following,omitempty"`
	FollowedBy bool   `json:"followed_by,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// TimelineEntry places a status or notification on a timeline.
type TimelineEntry struct {
	TimelineID string `json:"timeline_id"`
	ItemID     string `json:"item_id"`
}

// ThreadEntry records that a status belongs to the thread rooted at
// RootStatusID.
type ThreadEntry struct {
	RootStatusID string `json:"root_status_id"`
	StatusID     string `json:"status_id"`
}

type PinnedStatus struct {
	AccountID string `json:"account_id"`
	StatusID  string `json:"status_id"`
}
