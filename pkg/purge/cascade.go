package purge

import (
	"timelinedb/pkg/store/db/storedb"
	"timelinedb/pkg/store/keys"
)

// Cascade deletes. Both helpers delete every match regardless of set size,
// issue one delete per match, and are idempotent: deleting an absent key is
// a no-op. Keys are collected before deleting so the batch is not mutated
// under an open iterator.

// deleteRange removes every record whose key falls in rng. Used for
// dependent stores whose composite key leads with the parent id (threads,
// pinned statuses), where the children form one contiguous range.
func deleteRange(tx *storedb.Txn, rng keys.Range) (int, error) {
	ks, _, err := collectRange(tx, rng)
	if err != nil {
		return 0, err
	}
	for _, k := range ks {
		if err := tx.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(ks), nil
}

// deleteByIndex removes every index entry in rng together with the primary
// record it points at. Used for dependent stores reached through a
// foreign-key index (timeline entries by statusId / notificationId); each
// index entry's value holds the dependent's primary key.
func deleteByIndex(tx *storedb.Txn, rng keys.Range) (int, error) {
	idxKeys, primaries, err := collectRange(tx, rng)
	if err != nil {
		return 0, err
	}
	for i, idxKey := range idxKeys {
		if err := tx.Delete(primaries[i]); err != nil {
			return 0, err
		}
		if err := tx.Delete(idxKey); err != nil {
			return 0, err
		}
	}
	return len(idxKeys), nil
}

func collectRange(tx *storedb.Txn, rng keys.Range) (ks, values []string, err error) {
	iter, err := tx.NewIter(rng.Lower, rng.Upper)
	if err != nil {
		return nil, nil, err
	}
	defer iter.Close()
	for valid := iter.First(); valid; valid = iter.Next() {
		ks = append(ks, string(iter.Key()))
		values = append(values, string(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, nil, err
	}
	return ks, values, nil
}
