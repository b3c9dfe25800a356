package objstore

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var recordsBucket = []byte("records")

// boltIndex is a persistent single-layer Index backed by Bolt. The
// order-preserving key encoding makes Bolt's byte order the primary order,
// so seeks and scans need no custom comparator. Bolt's MVCC gives readers
// snapshot isolation and makes MergeInsert atomic.
type boltIndex struct {
	bdb *bbolt.DB
}

// BoltOptions tune the underlying Bolt database.
type BoltOptions struct {
	IsTesting bool
	MmapSize  int
	ReadOnly  bool
}

// OpenBoltIndex opens (creating if necessary) a Bolt-backed index at path.
func OpenBoltIndex(path string, opt BoltOptions) (Index, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.ReadOnly = opt.ReadOnly
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("objstore: %w", err)
	}

	if !opt.ReadOnly {
		err = bdb.Update(func(btx *bbolt.Tx) error {
			_, err := btx.CreateBucketIfNotExists(recordsBucket)
			return err
		})
		if err != nil {
			bdb.Close()
			return nil, fmt.Errorf("objstore: %w", err)
		}
	}

	return &boltIndex{bdb: bdb}, nil
}

// Bolt exposes the underlying database for stats and debugging.
func (ix *boltIndex) Bolt() *bbolt.DB {
	return ix.bdb
}

func (ix *boltIndex) Seek(key ObjectKey) (Iterator, error) {
	btx, err := ix.bdb.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("objstore: seek: %w", err)
	}
	buck := btx.Bucket(recordsBucket)
	if buck == nil {
		_ = btx.Rollback()
		return &boltIterator{done: true}, nil
	}
	return &boltIterator{
		btx:  btx,
		bcur: buck.Cursor(),
		seek: EncodeKey(key),
	}, nil
}

func (ix *boltIndex) MergeInsert(batch *Batch) error {
	return ix.bdb.Update(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(recordsBucket)
		if buck == nil {
			return fmt.Errorf("%w: records bucket missing", ErrCorrupt)
		}
		for _, rec := range batch.records {
			var err error
			if rec.val == nil {
				err = buck.Delete(rec.key)
			} else {
				err = buck.Put(rec.key, rec.val)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (ix *boltIndex) Close() error {
	return ix.bdb.Close()
}

type boltIterator struct {
	btx  *bbolt.Tx
	bcur *bbolt.Cursor
	seek []byte
	init bool
	done bool
	item ObjectItem
	err  error
}

func (it *boltIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	var k, v []byte
	if it.init {
		k, v = it.bcur.Next()
	} else {
		it.init = true
		k, v = it.bcur.Seek(it.seek)
	}
	if k == nil {
		it.done = true
		return false
	}
	it.item, it.err = decodeItem(k, v)
	return it.err == nil
}

func (it *boltIterator) Item() ObjectItem {
	return it.item
}

func (it *boltIterator) Err() error {
	return it.err
}

func (it *boltIterator) Close() error {
	if it.btx == nil {
		return nil
	}
	err := it.btx.Rollback()
	it.btx = nil
	if err != nil && err != bbolt.ErrTxClosed {
		return err
	}
	return nil
}
