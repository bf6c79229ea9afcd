package purge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timelinedb/pkg/models"
	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/keys"
	"timelinedb/pkg/store/records"
	"timelinedb/pkg/store/registry"
)

const testInstance = "example.social"

func newTestRunner(t *testing.T, window time.Duration, pageSize int) (*Runner, *storedb.Store) {
	t.Helper()
	reg := registry.New(t.TempDir())
	require.NoError(t, reg.Add(testInstance))
	t.Cleanup(func() { _ = reg.Close() })
	s, err := reg.Get(testInstance)
	require.NoError(t, err)
	return NewRunner(reg, window, pageSize, 0), s
}

func mustHave(t *testing.T, s *storedb.Store, key string) {
	t.Helper()
	ok, err := records.Has(s, key)
	require.NoError(t, err)
	require.True(t, ok, "expected key %q to exist", key)
}

func mustNotHave(t *testing.T, s *storedb.Store, key string) {
	t.Helper()
	ok, err := records.Has(s, key)
	require.NoError(t, err)
	require.False(t, ok, "expected key %q to be gone", key)
}

// Reference scenario: a 20-day-old status with a timeline entry and a thread
// entry, a 1-day-old status with a timeline entry, window of 14 days. The
// old status and everything hanging off it goes; the fresh one is untouched.
func TestRunPurgesExpiredStatusWithDependents(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()
	fresh := now - 24*time.Hour.Milliseconds()

	require.NoError(t, records.PutStatus(s, models.Status{ID: "1", Timestamp: old}))
	require.NoError(t, records.PutStatus(s, models.Status{ID: "2", Timestamp: fresh}))
	require.NoError(t, records.AddStatusToTimeline(s, "home", "1"))
	require.NoError(t, records.AddStatusToTimeline(s, "home", "2"))
	require.NoError(t, records.PutThreadEntry(s, "1", "1"))

	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenStatusKey("1"))
	mustNotHave(t, s, keys.GenStatusTimelineKey("home", "1"))
	mustNotHave(t, s, keys.GenStatusTimelineIndexKey("1", "home"))
	mustNotHave(t, s, keys.GenThreadKey("1", "1"))
	mustNotHave(t, s, keys.GenTimestampIndexKey(keys.KindStatus, old, "1"))

	mustHave(t, s, keys.GenStatusKey("2"))
	mustHave(t, s, keys.GenStatusTimelineKey("home", "2"))
	mustHave(t, s, keys.GenStatusTimelineIndexKey("2", "home"))
	mustHave(t, s, keys.GenTimestampIndexKey(keys.KindStatus, fresh, "2"))
}

// 45 expired notifications with page size 20 must drain fully (pages of
// 20, 20, 5) together with every timeline entry.
func TestRunPurgesNotificationsAcrossPages(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 30*24*time.Hour.Milliseconds()

	for i := 0; i < 45; i++ {
		id := fmt.Sprintf("n%02d", i)
		require.NoError(t, records.PutNotification(s, models.Notification{ID: id, Timestamp: old + int64(i)}))
		require.NoError(t, records.AddNotificationToTimeline(s, "notifications", id))
	}

	require.NoError(t, r.Run(context.Background(), testInstance))

	for i := 0; i < 45; i++ {
		id := fmt.Sprintf("n%02d", i)
		mustNotHave(t, s, keys.GenNotificationKey(id))
		mustNotHave(t, s, keys.GenNotificationTimelineKey("notifications", id))
		mustNotHave(t, s, keys.GenNotificationTimelineIndexKey(id, "notifications"))
	}
}

func TestScanExpiredPageSequence(t *testing.T) {
	_, s := newTestRunner(t, 14*24*time.Hour, 20)
	for i := 0; i < 45; i++ {
		require.NoError(t, records.PutNotification(s, models.Notification{
			ID:        fmt.Sprintf("n%02d", i),
			Timestamp: int64(1000 + i),
		}))
	}

	var pages []int
	err := s.Update(func(tx *storedb.Txn) error {
		return scanExpired(context.Background(), tx, keys.KindNotification, 5000, 20, nil, func(entries []keys.TimestampIndexEntry) error {
			pages = append(pages, len(entries))
			for _, e := range entries {
				if err := tx.Delete(keys.GenNotificationKey(e.ID)); err != nil {
					return err
				}
				if err := tx.Delete(keys.GenTimestampIndexKey(e.Kind, e.TS, e.ID)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, []int{20, 20, 5}, pages)
}

// Ascending timestamp order within a scan.
func TestScanExpiredOrdering(t *testing.T) {
	_, s := newTestRunner(t, time.Hour, 10)
	for _, ts := range []int64{500, 100, 300, 200, 400} {
		require.NoError(t, records.PutNotification(s, models.Notification{
			ID:        fmt.Sprintf("n%d", ts),
			Timestamp: ts,
		}))
	}

	var seen []int64
	err := s.Update(func(tx *storedb.Txn) error {
		return scanExpired(context.Background(), tx, keys.KindNotification, 1000, 10, nil, func(entries []keys.TimestampIndexEntry) error {
			for _, e := range entries {
				seen = append(seen, e.TS)
				if err := tx.Delete(keys.GenTimestampIndexKey(e.Kind, e.TS, e.ID)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, []int64{100, 200, 300, 400, 500}, seen)
}

// A handler that stops deleting what it is handed must abort the scan
// instead of looping forever.
func TestScanExpiredNoProgressGuard(t *testing.T) {
	_, s := newTestRunner(t, time.Hour, 5)
	for i := 0; i < 3; i++ {
		require.NoError(t, records.PutNotification(s, models.Notification{
			ID:        fmt.Sprintf("n%d", i),
			Timestamp: int64(100 + i),
		}))
	}

	err := s.Update(func(tx *storedb.Txn) error {
		return scanExpired(context.Background(), tx, keys.KindNotification, 1000, 5, nil, func([]keys.TimestampIndexEntry) error {
			return nil // deletes nothing
		})
	})
	require.ErrorIs(t, err, ErrNoProgress)
}

func TestRunPurgesAccountsAndRelationships(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 15*24*time.Hour.Milliseconds()
	fresh := now - 24*time.Hour.Milliseconds()

	require.NoError(t, records.PutAccount(s, models.Account{ID: "alice", Timestamp: old}))
	require.NoError(t, records.PutPinnedStatus(s, "alice", "s1"))
	require.NoError(t, records.PutPinnedStatus(s, "alice", "s2"))
	require.NoError(t, records.PutRelationship(s, models.Relationship{ID: "alice", Timestamp: old}))
	require.NoError(t, records.PutAccount(s, models.Account{ID: "bob", Timestamp: fresh}))
	require.NoError(t, records.PutPinnedStatus(s, "bob", "s3"))
	require.NoError(t, records.PutRelationship(s, models.Relationship{ID: "bob", Timestamp: fresh}))

	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenAccountKey("alice"))
	mustNotHave(t, s, keys.GenPinnedStatusKey("alice", "s1"))
	mustNotHave(t, s, keys.GenPinnedStatusKey("alice", "s2"))
	mustNotHave(t, s, keys.GenRelationshipKey("alice"))

	mustHave(t, s, keys.GenAccountKey("bob"))
	mustHave(t, s, keys.GenPinnedStatusKey("bob", "s3"))
	mustHave(t, s, keys.GenRelationshipKey("bob"))
}

// An expired parent with thousands of dependents loses every one of them.
func TestRunCascadeManyDependents(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()

	require.NoError(t, records.PutStatus(s, models.Status{ID: "big", Timestamp: old}))
	for i := 0; i < 2500; i++ {
		require.NoError(t, records.AddStatusToTimeline(s, fmt.Sprintf("line%04d", i), "big"))
	}
	for i := 0; i < 100; i++ {
		require.NoError(t, records.PutThreadEntry(s, "big", fmt.Sprintf("reply%03d", i)))
	}

	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenStatusKey("big"))
	for _, i := range []int{0, 1, 1249, 2499} {
		line := fmt.Sprintf("line%04d", i)
		mustNotHave(t, s, keys.GenStatusTimelineKey(line, "big"))
		mustNotHave(t, s, keys.GenStatusTimelineIndexKey("big", line))
	}
	mustNotHave(t, s, keys.GenThreadKey("big", "reply000"))
	mustNotHave(t, s, keys.GenThreadKey("big", "reply099"))
}

// Cascades for an expired account must not touch a lexicographically
// adjacent account's children.
func TestRunRangeIsolationBetweenAdjacentAccounts(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()
	fresh := now - 24*time.Hour.Milliseconds()

	require.NoError(t, records.PutAccount(s, models.Account{ID: "a", Timestamp: old}))
	require.NoError(t, records.PutPinnedStatus(s, "a", "p1"))
	require.NoError(t, records.PutAccount(s, models.Account{ID: "a1", Timestamp: fresh}))
	require.NoError(t, records.PutPinnedStatus(s, "a1", "p2"))

	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenAccountKey("a"))
	mustNotHave(t, s, keys.GenPinnedStatusKey("a", "p1"))
	mustHave(t, s, keys.GenAccountKey("a1"))
	mustHave(t, s, keys.GenPinnedStatusKey("a1", "p2"))
}

// Running twice with no writes in between: the second pass deletes nothing
// and reports no error.
func TestRunIdempotent(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()

	require.NoError(t, records.PutStatus(s, models.Status{ID: "1", Timestamp: old}))
	require.NoError(t, records.AddStatusToTimeline(s, "home", "1"))

	require.NoError(t, r.Run(context.Background(), testInstance))
	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenStatusKey("1"))
}

// An aborted transaction applies nothing: no primary is deleted without its
// dependents and vice versa.
func TestRunAbortAppliesNothing(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()

	require.NoError(t, records.PutStatus(s, models.Status{ID: "1", Timestamp: old}))
	require.NoError(t, records.AddStatusToTimeline(s, "home", "1"))
	require.NoError(t, records.PutThreadEntry(s, "1", "1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx, testInstance)
	require.Error(t, err)
	require.ErrorContains(t, err, "transaction aborted")

	mustHave(t, s, keys.GenStatusKey("1"))
	mustHave(t, s, keys.GenStatusTimelineKey("home", "1"))
	mustHave(t, s, keys.GenThreadKey("1", "1"))
	mustHave(t, s, keys.GenTimestampIndexKey(keys.KindStatus, old, "1"))
}

func TestRunUnknownInstance(t *testing.T) {
	r, _ := newTestRunner(t, 14*24*time.Hour, 20)
	err := r.Run(context.Background(), "nobody.example")
	require.ErrorIs(t, err, registry.ErrStoreUnavailable)
}

// Dependents of a non-expired parent are never touched, even when another
// parent in the same store expires.
func TestRunLeavesFreshDependentsAlone(t *testing.T) {
	r, s := newTestRunner(t, 14*24*time.Hour, 20)
	now := time.Now().UnixMilli()
	old := now - 20*24*time.Hour.Milliseconds()
	fresh := now - 24*time.Hour.Milliseconds()

	require.NoError(t, records.PutNotification(s, models.Notification{ID: "gone", Timestamp: old}))
	require.NoError(t, records.AddNotificationToTimeline(s, "notifications", "gone"))
	require.NoError(t, records.PutNotification(s, models.Notification{ID: "kept", Timestamp: fresh}))
	require.NoError(t, records.AddNotificationToTimeline(s, "notifications", "kept"))

	require.NoError(t, r.Run(context.Background(), testInstance))

	mustNotHave(t, s, keys.GenNotificationKey("gone"))
	mustNotHave(t, s, keys.GenNotificationTimelineKey("notifications", "gone"))
	mustHave(t, s, keys.GenNotificationKey("kept"))
	mustHave(t, s, keys.GenNotificationTimelineKey("notifications", "kept"))
}
