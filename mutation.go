package objstore

import "fmt"

// Extent mutation. Given a request to map or punch [r.Start, r.End) of one
// (object, attribute), computes the net insert/tombstone set that preserves
// the "at most one live record per byte" invariant against whatever records
// the index currently holds for that range.
//
// Coalescing policy: enabled, write path only. A new extent merges with a
// pre-existing untouched neighbor when the two are logically adjacent AND
// device-contiguous. Fragments retained from a split are never merged with
// the new extent (a fresh allocation is not contiguous with them), and
// punching never merges the surviving fragments.

// liveExtent is an existing record collected during the overlap scan.
type liveExtent struct {
	key ObjectKey
	rng Range[uint64]
	dev uint64
}

// planExtentMutation appends to batch the records needed to write (map to
// deviceOffset) or punch r, and returns the device ranges the operation
// supersedes. Freed ranges must be returned to the allocator only after the
// batch commits.
func planExtentMutation(ix Index, objectID ObjectID, attributeID AttributeID, r Range[uint64], write bool, deviceOffset uint64, batch *Batch) (freed []Range[uint64], err error) {
	// Seek in lower-bound order: an extent ending before r.Start cannot
	// overlap r and sorts before the seek key; one ending exactly at
	// r.Start is the potential left coalescing partner.
	seek := ObjectKeyExtent(objectID, attributeID, Range[uint64]{0, r.Start})
	iter, err := ix.Seek(seek)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var left, right *liveExtent
	var overlapping []liveExtent
	for iter.Next() {
		item := iter.Item()
		k := item.Key
		if k.ObjectID != objectID || k.Kind != KindExtent || k.AttributeID != attributeID {
			break
		}
		// Live extents are pairwise disjoint, so end order is also start
		// order; past r.End nothing can overlap anymore.
		if k.Extent.Start > r.End {
			break
		}
		if item.Value == nil {
			continue
		}
		rec := liveExtent{key: k, rng: k.Extent, dev: item.Value.Extent.DeviceOffset}
		switch {
		case rec.rng.End == r.Start:
			left = &rec
		case rec.rng.Start == r.End:
			right = &rec
		case rec.rng.Overlaps(r):
			overlapping = append(overlapping, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning extents of obj %d attr %d: %w", objectID, attributeID, err)
	}

	for _, rec := range overlapping {
		batch.AddTombstone(rec.key)
		ov := rec.rng.Intersect(r)
		freed = append(freed, Range[uint64]{
			rec.dev + (ov.Start - rec.rng.Start),
			rec.dev + (ov.End - rec.rng.Start),
		})
		if rec.rng.Start < r.Start {
			// Retained prefix keeps its device mapping, truncated.
			batch.AddInsert(ObjectItem{
				Key:   ObjectKeyExtent(objectID, attributeID, Range[uint64]{rec.rng.Start, r.Start}),
				Value: ptr(ObjectValueExtent(rec.dev)),
			})
		}
		if rec.rng.End > r.End {
			// Retained suffix advances its device offset past the hole.
			batch.AddInsert(ObjectItem{
				Key:   ObjectKeyExtent(objectID, attributeID, Range[uint64]{r.End, rec.rng.End}),
				Value: ptr(ObjectValueExtent(rec.dev + (r.End - rec.rng.Start))),
			})
		}
	}

	if !write {
		return freed, nil
	}

	newRange, newDev := r, deviceOffset
	if left != nil && left.dev+left.rng.Length() == newDev {
		batch.AddTombstone(left.key)
		newRange.Start = left.rng.Start
		newDev = left.dev
	}
	if right != nil && newDev+(r.End-newRange.Start) == right.dev {
		batch.AddTombstone(right.key)
		newRange.End = right.rng.End
	}
	batch.AddInsert(ObjectItem{
		Key:   ObjectKeyExtent(objectID, attributeID, newRange),
		Value: ptr(ObjectValueExtent(newDev)),
	})
	return freed, nil
}

func ptr[T any](v T) *T {
	return &v
}
