package objstore

import "errors"

var errIndexClosed = errors.New("index closed")

// Index abstracts the merge index that physically stores records. In the
// full system this is a multi-layer LSM tree with its own compaction; here
// it is an injected dependency so the record/extent core stays pure and
// unit-testable without a real disk.
//
// Contract an implementation must honor:
//
//   - Seek returns records in primary order (ComparePrimary), starting at
//     the first record at or after the given key. Callers construct the
//     argument with ObjectKey.LowerBound so that an extent starting before
//     the query floor but reaching into it is not skipped.
//   - MergeInsert applies a whole batch atomically: a reader either
//     observes all of its inserts and tombstones or none of them, and every
//     reader observes one consistent snapshot across layers.
//   - A multi-layer engine keeps tombstones until compaction proves no
//     older layer still holds the deleted record. The single-layer
//     implementations in this package apply tombstones as eager deletes,
//     which is equivalent for one layer.
type Index interface {
	// Seek positions an iterator at the first record whose key is >= key
	// in primary order. The caller must Close the iterator.
	Seek(key ObjectKey) (Iterator, error)

	// MergeInsert atomically stages the batch's inserts and tombstones.
	MergeInsert(batch *Batch) error

	// Close releases the index.
	Close() error
}

// Iterator walks records in primary order.
type Iterator interface {
	// Next advances to the next record, returning false at the end or on
	// error. It must be called before the first Item.
	Next() bool

	// Item returns the current record.
	Item() ObjectItem

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close releases the iterator.
	Close() error
}
