package purge

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"timelinedb/pkg/metrics"
	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/keys"
)

// ErrNoProgress reports that an expired-key page failed to advance past the
// previous page. Termination of the scan relies on handlers removing the
// index entries they were handed; a handler that stops doing so would
// otherwise loop forever.
var ErrNoProgress = errors.New("expired-key scan made no progress")

// scanExpired walks kind's timestamp index inside tx, fetching up to
// pageSize entries with ts <= cutoff in ascending timestamp order and
// invoking onBatch per page. After every page it re-queries from the range's
// lower bound unconditionally: the handler's deletes shift the index, so
// re-reading converges until a page comes back empty.
func scanExpired(ctx context.Context, tx *storedb.Txn, kind keys.Kind, cutoff int64, pageSize int, limiter *rate.Limiter, onBatch func([]keys.TimestampIndexEntry) error) error {
	if pageSize <= 0 {
		return fmt.Errorf("scan %s: page size must be positive, got %d", kind, pageSize)
	}
	rng, err := keys.ExpiredRange(kind, cutoff)
	if err != nil {
		return err
	}
	var prevFirst string
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		page, err := fetchPage(tx, rng, pageSize)
		if err != nil {
			return fmt.Errorf("scan %s: %w", kind, err)
		}
		if len(page) == 0 {
			return nil
		}
		metrics.SweepPages.Inc()
		if page[0] == prevFirst {
			return fmt.Errorf("scan %s at %s: %w", kind, page[0], ErrNoProgress)
		}
		prevFirst = page[0]

		entries := make([]keys.TimestampIndexEntry, 0, len(page))
		for _, raw := range page {
			e, err := keys.ParseTimestampIndexKey(raw)
			if err != nil {
				return fmt.Errorf("scan %s: %w", kind, err)
			}
			entries = append(entries, e)
		}
		if err := onBatch(entries); err != nil {
			return err
		}
	}
}

// fetchPage reads up to pageSize keys from the front of rng. The iterator
// observes tx's pending deletes, which is what makes successive pages shrink.
func fetchPage(tx *storedb.Txn, rng keys.Range, pageSize int) ([]string, error) {
	iter, err := tx.NewIter(rng.Lower, rng.Upper)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var page []string
	for valid := iter.First(); valid && len(page) < pageSize; valid = iter.Next() {
		page = append(page, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return page, nil
}
