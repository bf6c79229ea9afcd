package keys

const (
	// notation dictionary for key formats:
	// st  = status
	// nf  = notification
	// ac  = account
	// rl  = relationship
	// th  = thread entry
	// tl  = timeline entry (tl:s = status timeline, tl:n = notification timeline)
	// pin = pinned status
	// idx = secondary index
	// ts  = timestamp index segment
	// All keys are lowercase; segments are separated by ":"
	// <...> = variable segment (e.g. <status_id>, <padded_ts>)

	// primary storage key formats
	StatusKey               = "st:%s"      // st:<status_id>
	StatusTimelineKey       = "tl:s:%s:%s" // tl:s:<timeline_id>:<status_id>
	ThreadKey               = "th:%s:%s"   // th:<root_status_id>:<status_id>
	NotificationKey         = "nf:%s"      // nf:<notification_id>
	NotificationTimelineKey = "tl:n:%s:%s" // tl:n:<timeline_id>:<notification_id>
	AccountKey              = "ac:%s"      // ac:<account_id>
	PinnedStatusKey         = "pin:%s:%s"  // pin:<account_id>:<status_id>
	RelationshipKey         = "rl:%s"      // rl:<account_id>

	// timestamp indexes (one per primary store, ascending by padded ts)
	TimestampIndexKey = "idx:ts:%s:%s:%s" // idx:ts:<kind>:<padded_ts>:<id>

	// foreign-key indexes on timeline stores
	StatusTimelineIndexKey       = "idx:tl:s:%s:%s" // idx:tl:s:<status_id>:<timeline_id>
	NotificationTimelineIndexKey = "idx:tl:n:%s:%s" // idx:tl:n:<notification_id>:<timeline_id>

	// padding width for timestamps (fixed for lexicographic ordering)
	TSPadWidth = 20 // e.g. %020d
)

// Kind names a primary store inside timestamp-index keys.
type Kind string

const (
	KindStatus       Kind = "st"
	KindNotification Kind = "nf"
	KindAccount      Kind = "ac"
	KindRelationship Kind = "rl"
)
