package records

import (
	"encoding/json"
	"fmt"

	"timelinedb/pkg/models"
	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/keys"
)

// Ingestion write paths. Every put maintains the index entries the eviction
// engine scans: the per-store timestamp index and the foreign-key indexes on
// the timeline stores. Re-ingesting a record with a new timestamp replaces
// its old timestamp index entry.

func PutStatus(s *storedb.Store, st models.Status) error {
	if err := keys.ValidateID(st.ID); err != nil {
		return fmt.Errorf("put status: %w", err)
	}
	primary := keys.GenStatusKey(st.ID)
	if err := replaceTimestampIndex(s, primary, keys.KindStatus, st.ID, st.Timestamp); err != nil {
		return err
	}
	return putJSON(s, primary, st)
}

func AddStatusToTimeline(s *storedb.Store, timelineID, statusID string) error {
	if err := validateIDs(timelineID, statusID); err != nil {
		return fmt.Errorf("add status to timeline: %w", err)
	}
	entry := models.TimelineEntry{TimelineID: timelineID, ItemID: statusID}
	if err := putJSON(s, keys.GenStatusTimelineKey(timelineID, statusID), entry); err != nil {
		return err
	}
	return s.Set(keys.GenStatusTimelineIndexKey(statusID, timelineID), []byte(keys.GenStatusTimelineKey(timelineID, statusID)))
}

func PutThreadEntry(s *storedb.Store, rootStatusID, statusID string) error {
	if err := validateIDs(rootStatusID, statusID); err != nil {
		return fmt.Errorf("put thread entry: %w", err)
	}
	entry := models.ThreadEntry{RootStatusID: rootStatusID, StatusID: statusID}
	return putJSON(s, keys.GenThreadKey(rootStatusID, statusID), entry)
}

func PutNotification(s *storedb.Store, n models.Notification) error {
	if err := keys.ValidateID(n.ID); err != nil {
		return fmt.Errorf("put notification: %w", err)
	}
	primary := keys.GenNotificationKey(n.ID)
	if err := replaceTimestampIndex(s, primary, keys.KindNotification, n.ID, n.Timestamp); err != nil {
		return err
	}
	return putJSON(s, primary, n)
}

func AddNotificationToTimeline(s *storedb.Store, timelineID, notificationID string) error {
	if err := validateIDs(timelineID, notificationID); err != nil {
		return fmt.Errorf("add notification to timeline: %w", err)
	}
	entry := models.TimelineEntry{TimelineID: timelineID, ItemID: notificationID}
	if err := putJSON(s, keys.GenNotificationTimelineKey(timelineID, notificationID), entry); err != nil {
		return err
	}
	return s.Set(keys.GenNotificationTimelineIndexKey(notificationID, timelineID), []byte(keys.GenNotificationTimelineKey(timelineID, notificationID)))
}

func PutAccount(s *storedb.Store, a models.Account) error {
	if err := keys.ValidateID(a.ID); err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	primary := keys.GenAccountKey(a.ID)
	if err := replaceTimestampIndex(s, primary, keys.KindAccount, a.ID, a.Timestamp); err != nil {
		return err
	}
	return putJSON(s, primary, a)
}

func PutPinnedStatus(s *storedb.Store, accountID, statusID string) error {
	if err := validateIDs(accountID, statusID); err != nil {
		return fmt.Errorf("put pinned status: %w", err)
	}
	entry := models.PinnedStatus{AccountID: accountID, StatusID: statusID}
	return putJSON(s, keys.GenPinnedStatusKey(accountID, statusID), entry)
}

func PutRelationship(s *storedb.Store, r models.Relationship) error {
	if err := keys.ValidateID(r.ID); err != nil {
		return fmt.Errorf("put relationship: %w", err)
	}
	primary := keys.GenRelationshipKey(r.ID)
	if err := replaceTimestampIndex(s, primary, keys.KindRelationship, r.ID, r.Timestamp); err != nil {
		return err
	}
	return putJSON(s, primary, r)
}

func GetStatus(s *storedb.Store, statusID string) (models.Status, error) {
	var st models.Status
	err := getJSON(s, keys.GenStatusKey(statusID), &st)
	return st, err
}

func GetNotification(s *storedb.Store, notificationID string) (models.Notification, error) {
	var n models.Notification
	err := getJSON(s, keys.GenNotificationKey(notificationID), &n)
	return n, err
}

func GetAccount(s *storedb.Store, accountID string) (models.Account, error) {
	var a models.Account
	err := getJSON(s, keys.GenAccountKey(accountID), &a)
	return a, err
}

func GetRelationship(s *storedb.Store, accountID string) (models.Relationship, error) {
	var r models.Relationship
	err := getJSON(s, keys.GenRelationshipKey(accountID), &r)
	return r, err
}

// Has reports whether a raw key exists.
func Has(s *storedb.Store, key string) (bool, error) {
	_, err := s.Get(key)
	if err != nil {
		if storedb.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// replaceTimestampIndex writes the timestamp index entry for a primary
// record, removing the stale entry first when the record already exists
// with a different timestamp.
func replaceTimestampIndex(s *storedb.Store, primaryKey string, kind keys.Kind, id string, ts int64) error {
	if old, err := s.Get(primaryKey); err == nil {
		var prev struct {
			Timestamp int64 `json:"timestamp"`
		}
		if jerr := json.Unmarshal(old, &prev); jerr == nil && prev.Timestamp != ts {
			if derr := s.Delete(keys.GenTimestampIndexKey(kind, prev.Timestamp, id)); derr != nil {
				return derr
			}
		}
	} else if !storedb.IsNotFound(err) {
		return err
	}
	return s.Set(keys.GenTimestampIndexKey(kind, ts, id), []byte(id))
}

func putJSON(s *storedb.Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, b)
}

func getJSON(s *storedb.Store, key string, v any) error {
	b, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func validateIDs(ids ...string) error {
	for _, id := range ids {
		if err := keys.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}
