package keys

import (
	"fmt"
)

// Range is a half-open key interval [Lower, Upper). A nil Upper means
// unbounded above.
type Range struct {
	Lower []byte
	Upper []byte
}

// prefixRange bounds exactly the keys starting with prefix. The upper bound
// is the next lexicographic key after the prefix, so adjacent parents (e.g.
// "a1" vs "a12") can never leak into each other's range: the trailing ":"
// of the prefix acts as an explicit terminator.
func prefixRange(prefix string) Range {
	return Range{Lower: []byte(prefix), Upper: nextPrefix([]byte(prefix))}
}

// ThreadChildRange bounds every thread entry whose root is rootStatusID,
// i.e. all keys th:<rootStatusID>:<*>.
func ThreadChildRange(rootStatusID string) (Range, error) {
	if err := ValidateID(rootStatusID); err != nil {
		return Range{}, fmt.Errorf("thread child range: %w", err)
	}
	return prefixRange(fmt.Sprintf("th:%s:", rootStatusID)), nil
}

// PinnedStatusRange bounds every pinned status belonging to accountID,
// i.e. all keys pin:<accountID>:<*>.
func PinnedStatusRange(accountID string) (Range, error) {
	if err := ValidateID(accountID); err != nil {
		return Range{}, fmt.Errorf("pinned status range: %w", err)
	}
	return prefixRange(fmt.Sprintf("pin:%s:", accountID)), nil
}

// StatusTimelineIndexRange bounds the statusId index entries for one status,
// i.e. all keys idx:tl:s:<statusID>:<*>.
func StatusTimelineIndexRange(statusID string) (Range, error) {
	if err := ValidateID(statusID); err != nil {
		return Range{}, fmt.Errorf("status timeline index range: %w", err)
	}
	return prefixRange(fmt.Sprintf("idx:tl:s:%s:", statusID)), nil
}

// NotificationTimelineIndexRange bounds the notificationId index entries for
// one notification, i.e. all keys idx:tl:n:<notificationID>:<*>.
func NotificationTimelineIndexRange(notificationID string) (Range, error) {
	if err := ValidateID(notificationID); err != nil {
		return Range{}, fmt.Errorf("notification timeline index range: %w", err)
	}
	return prefixRange(fmt.Sprintf("idx:tl:n:%s:", notificationID)), nil
}

// ExpiredRange bounds the timestamp-index entries of kind with ts <= cutoff:
// [idx:ts:<kind>:, idx:ts:<kind>:<pad(cutoff)>:\xff). Padded timestamps sort
// lexicographically in numeric order, so the interval is exact.
func ExpiredRange(kind Kind, cutoff int64) (Range, error) {
	if cutoff < 0 {
		return Range{}, fmt.Errorf("expired range: negative cutoff %d", cutoff)
	}
	lower := fmt.Sprintf("idx:ts:%s:", kind)
	upper := nextPrefix([]byte(fmt.Sprintf("idx:ts:%s:%s:", kind, PadTS(cutoff))))
	return Range{Lower: []byte(lower), Upper: upper}, nil
}

// nextPrefix computes the next lexicographical key after a given prefix.
func nextPrefix(prefix []byte) []byte {
	out := make([]byte, len(prefix))
	copy(out, prefix)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil // no upper bound if all 0xFF
}
