package keys

import (
	"fmt"
)

// primary stores
func GenStatusKey(statusID string) string {
	return fmt.Sprintf(StatusKey, statusID)
}

func GenStatusTimelineKey(timelineID, statusID string) string {
	return fmt.Sprintf(StatusTimelineKey, timelineID, statusID)
}

func GenThreadKey(rootStatusID, statusID string) string {
	return fmt.Sprintf(ThreadKey, rootStatusID, statusID)
}

func GenNotificationKey(notificationID string) string {
	return fmt.Sprintf(NotificationKey, notificationID)
}

func GenNotificationTimelineKey(timelineID, notificationID string) string {
	return fmt.Sprintf(NotificationTimelineKey, timelineID, notificationID)
}

func GenAccountKey(accountID string) string {
	return fmt.Sprintf(AccountKey, accountID)
}

func GenPinnedStatusKey(accountID, statusID string) string {
	return fmt.Sprintf(PinnedStatusKey, accountID, statusID)
}

func GenRelationshipKey(accountID string) string {
	return fmt.Sprintf(RelationshipKey, accountID)
}

// indexes
func GenTimestampIndexKey(kind Kind, ts int64, id string) string {
	return fmt.Sprintf(TimestampIndexKey, kind, PadTS(ts), id)
}

func GenStatusTimelineIndexKey(statusID, timelineID string) string {
	return fmt.Sprintf(StatusTimelineIndexKey, statusID, timelineID)
}

func GenNotificationTimelineIndexKey(notificationID, timelineID string) string {
	return fmt.Sprintf(NotificationTimelineIndexKey, notificationID, timelineID)
}

// helpers
func PadTS(ts int64) string {
	return fmt.Sprintf("%0*d", TSPadWidth, ts)
}
