package objstore

import (
	"bytes"
	"slices"
	"sort"
	"sync"
)

// memIndex is a transient in-memory Index intended for tests. Records are
// kept as encoded key/value pairs in a sorted slice; MergeInsert replaces
// the slice wholesale, so an iterator opened earlier keeps reading its own
// snapshot.
type memIndex struct {
	mu     sync.Mutex
	items  []memRecord
	closed bool
}

type memRecord struct {
	key   []byte
	value []byte
}

// NewMemIndex returns an empty in-memory index.
func NewMemIndex() Index {
	return &memIndex{}
}

func (ix *memIndex) Seek(key ObjectKey) (Iterator, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil, errIndexClosed
	}
	seek := EncodeKey(key)
	items := ix.items // snapshot; mutations never modify the shared slice
	pos := sort.Search(len(items), func(i int) bool {
		return bytes.Compare(items[i].key, seek) >= 0
	})
	return &memIterator{items: items, pos: pos - 1}, nil
}

func (ix *memIndex) MergeInsert(batch *Batch) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return errIndexClosed
	}
	items := slices.Clone(ix.items)
	for _, rec := range batch.records {
		i := sort.Search(len(items), func(i int) bool {
			return bytes.Compare(items[i].key, rec.key) >= 0
		})
		found := i < len(items) && bytes.Equal(items[i].key, rec.key)
		if rec.val == nil {
			if found {
				items = slices.Delete(items, i, i+1)
			}
		} else if found {
			items[i].value = rec.val
		} else {
			items = slices.Insert(items, i, memRecord{rec.key, rec.val})
		}
	}
	ix.items = items
	return nil
}

func (ix *memIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	ix.items = nil
	return nil
}

type memIterator struct {
	items []memRecord
	pos   int
	item  ObjectItem
	err   error
}

func (it *memIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.pos++
	if it.pos >= len(it.items) {
		return false
	}
	rec := it.items[it.pos]
	it.item, it.err = decodeItem(rec.key, rec.value)
	return it.err == nil
}

func (it *memIterator) Item() ObjectItem {
	return it.item
}

func (it *memIterator) Err() error {
	return it.err
}

func (it *memIterator) Close() error {
	return nil
}
