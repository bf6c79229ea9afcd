package purge

import (
	"context"

	"golang.org/x/time/rate"

	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/keys"
)

// Store names for deletion accounting.
const (
	storeStatuses              = "statuses"
	storeStatusTimelines       = "status_timelines"
	storeThreads               = "threads"
	storeNotifications         = "notifications"
	storeNotificationTimelines = "notification_timelines"
	storeAccounts              = "accounts"
	storePinnedStatuses        = "pinned_statuses"
	storeRelationships         = "relationships"
)

// pass is one cleanup pass over one instance: one transaction, one shared
// cutoff. The four rules share no ordering or results; each deletes its
// primary record, the timestamp-index entry it was found through, and its
// dependents.
type pass struct {
	ctx      context.Context
	tx       *storedb.Txn
	cutoff   int64
	pageSize int
	limiter  *rate.Limiter
	deleted  map[string]int
}

func newPass(ctx context.Context, tx *storedb.Txn, cutoff int64, pageSize int, limiter *rate.Limiter) *pass {
	return &pass{
		ctx:      ctx,
		tx:       tx,
		cutoff:   cutoff,
		pageSize: pageSize,
		limiter:  limiter,
		deleted:  make(map[string]int),
	}
}

func (p *pass) run() error {
	rules := []func() error{
		p.cleanupStatuses,
		p.cleanupNotifications,
		p.cleanupAccounts,
		p.cleanupRelationships,
	}
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

// cleanupStatuses deletes expired statuses and cascades into their timeline
// entries (statusId index) and thread entries (key range under the status).
func (p *pass) cleanupStatuses() error {
	return p.scan(keys.KindStatus, func(e keys.TimestampIndexEntry) error {
		if err := p.deletePrimary(storeStatuses, keys.GenStatusKey(e.ID), e); err != nil {
			return err
		}
		idxRng, err := keys.StatusTimelineIndexRange(e.ID)
		if err != nil {
			return err
		}
		n, err := deleteByIndex(p.tx, idxRng)
		if err != nil {
			return err
		}
		p.deleted[storeStatusTimelines] += n
		thRng, err := keys.ThreadChildRange(e.ID)
		if err != nil {
			return err
		}
		n, err = deleteRange(p.tx, thRng)
		if err != nil {
			return err
		}
		p.deleted[storeThreads] += n
		return nil
	})
}

// cleanupNotifications deletes expired notifications and cascades into their
// timeline entries (notificationId index).
func (p *pass) cleanupNotifications() error {
	return p.scan(keys.KindNotification, func(e keys.TimestampIndexEntry) error {
		if err := p.deletePrimary(storeNotifications, keys.GenNotificationKey(e.ID), e); err != nil {
			return err
		}
		idxRng, err := keys.NotificationTimelineIndexRange(e.ID)
		if err != nil {
			return err
		}
		n, err := deleteByIndex(p.tx, idxRng)
		if err != nil {
			return err
		}
		p.deleted[storeNotificationTimelines] += n
		return nil
	})
}

// cleanupAccounts deletes expired accounts and cascades into their pinned
// statuses (key range under the account).
func (p *pass) cleanupAccounts() error {
	return p.scan(keys.KindAccount, func(e keys.TimestampIndexEntry) error {
		if err := p.deletePrimary(storeAccounts, keys.GenAccountKey(e.ID), e); err != nil {
			return err
		}
		pinRng, err := keys.PinnedStatusRange(e.ID)
		if err != nil {
			return err
		}
		n, err := deleteRange(p.tx, pinRng)
		if err != nil {
			return err
		}
		p.deleted[storePinnedStatuses] += n
		return nil
	})
}

// cleanupRelationships deletes expired relationships. No dependents.
func (p *pass) cleanupRelationships() error {
	return p.scan(keys.KindRelationship, func(e keys.TimestampIndexEntry) error {
		return p.deletePrimary(storeRelationships, keys.GenRelationshipKey(e.ID), e)
	})
}

func (p *pass) scan(kind keys.Kind, each func(keys.TimestampIndexEntry) error) error {
	return scanExpired(p.ctx, p.tx, kind, p.cutoff, p.pageSize, p.limiter, func(entries []keys.TimestampIndexEntry) error {
		for _, e := range entries {
			if err := each(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// deletePrimary removes a primary record and the timestamp-index entry it
// was scanned through. Removing the index entry is what makes re-queried
// pages shrink.
func (p *pass) deletePrimary(store, primaryKey string, e keys.TimestampIndexEntry) error {
	if err := p.tx.Delete(primaryKey); err != nil {
		return err
	}
	if err := p.tx.Delete(keys.GenTimestampIndexKey(e.Kind, e.TS, e.ID)); err != nil {
		return err
	}
	p.deleted[store]++
	return nil
}
