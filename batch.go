package objstore

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Batch is the atomic unit of mutation: the net set of inserts and
// tombstones produced by one store operation. A batch is handed to the
// index engine in one MergeInsert call; the engine must make either all of
// it visible or none of it.
type Batch struct {
	records []batchRecord
}

type batchRecord struct {
	item ObjectItem
	key  []byte // encoded
	val  []byte // encoded, nil for tombstones
}

// AddInsert stages an insert. Panics on a kind/value pairing violation:
// assembling a mispaired record is a programmer error, not an operational
// one.
func (b *Batch) AddInsert(item ObjectItem) {
	if item.Value == nil {
		panic("AddInsert with nil value, use AddTombstone")
	}
	if err := item.validate(); err != nil {
		panic(err)
	}
	b.records = append(b.records, batchRecord{
		item: item,
		key:  EncodeKey(item.Key),
		val:  EncodeValue(*item.Value),
	})
}

// AddTombstone stages the deletion of whatever key currently maps to.
func (b *Batch) AddTombstone(key ObjectKey) {
	b.records = append(b.records, batchRecord{
		item: ObjectItem{Key: key},
		key:  EncodeKey(key),
	})
}

func (b *Batch) Len() int {
	return len(b.records)
}

func (b *Batch) Empty() bool {
	return len(b.records) == 0
}

// Items returns the staged records; tombstones have a nil Value.
func (b *Batch) Items() []ObjectItem {
	items := make([]ObjectItem, len(b.records))
	for i, rec := range b.records {
		items[i] = rec.item
	}
	return items
}

// Fingerprint returns an xxhash64 over the encoded records, with length
// framing so that record boundaries matter. The journal layer stores it
// next to each committed batch; it also makes applied batches greppable in
// debug logs.
func (b *Batch) Fingerprint() uint64 {
	var lenbuf [binary.MaxVarintLen64]byte
	h := xxhash.New()
	for _, rec := range b.records {
		n := binary.PutUvarint(lenbuf[:], uint64(len(rec.key)))
		_, _ = h.Write(lenbuf[:n])
		_, _ = h.Write(rec.key)
		n = binary.PutUvarint(lenbuf[:], uint64(len(rec.val)))
		_, _ = h.Write(lenbuf[:n])
		_, _ = h.Write(rec.val)
	}
	return h.Sum64()
}

func (b *Batch) String() string {
	var buf strings.Builder
	for i, rec := range b.records {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(rec.item.String())
	}
	return buf.String()
}
