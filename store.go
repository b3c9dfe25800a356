package objstore

import (
	"fmt"
	"log/slog"
)

// Allocator issues device byte ranges for new extents. The store never
// invents device offsets; it obtains them here and returns superseded
// ranges via Free once the superseding batch has committed.
type Allocator interface {
	Allocate(length uint64) (uint64, error)
	Free(deviceOffset, length uint64)
}

// Store translates filesystem-level operations into record batches. It is
// synchronous and holds no locks of its own: serialization of conflicting
// mutations is the journal/transaction layer's job, and the Index must make
// each MergeInsert atomically visible.
type Store struct {
	index  Index
	alloc  Allocator
	logger *slog.Logger
}

// StoreOptions configure a Store.
type StoreOptions struct {
	Logger *slog.Logger
}

// NewStore wires a store to its index and allocator.
func NewStore(index Index, alloc Allocator, opt StoreOptions) *Store {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{index: index, alloc: alloc, logger: logger}
}

// CreateObject inserts the Object record for a new object.
func (s *Store) CreateObject(id ObjectID, typ ObjectType) error {
	existing, err := s.getValue(ObjectKeyObject(id))
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: object %d already exists", ErrInvalidArgument, id)
	}
	var batch Batch
	batch.AddInsert(ObjectItem{Key: ObjectKeyObject(id), Value: ptr(ObjectValueObject(typ))})
	return s.apply("create_object", &batch, nil)
}

// DeleteObject tombstones the Object record and, in the same batch, every
// Attribute, Extent and Child record of the object, returning all mapped
// device space to the allocator. A directory with live children is refused.
func (s *Store) DeleteObject(id ObjectID) error {
	objVal, err := s.getValue(ObjectKeyObject(id))
	if err != nil {
		return err
	}
	if objVal == nil {
		return fmt.Errorf("%w: object %d", ErrNotFound, id)
	}

	var batch Batch
	var freed []Range[uint64]
	var children int
	err = s.scanObject(id, func(item ObjectItem) error {
		if item.Key.Kind == KindChild {
			children++
		}
		if item.Key.Kind == KindExtent && item.Value != nil {
			dev := item.Value.Extent.DeviceOffset
			freed = append(freed, Range[uint64]{dev, dev + item.Key.Extent.Length()})
		}
		batch.AddTombstone(item.Key)
		return nil
	})
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: object %d is a directory with %d live children", ErrInvalidArgument, id, children)
	}
	return s.apply("delete_object", &batch, freed)
}

// CreateAttribute inserts a zero-sized Attribute record. The object must
// already exist.
func (s *Store) CreateAttribute(id ObjectID, attr AttributeID) error {
	objVal, err := s.getValue(ObjectKeyObject(id))
	if err != nil {
		return err
	}
	if objVal == nil {
		return fmt.Errorf("%w: object %d", ErrNotFound, id)
	}
	existing, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: attribute %d of object %d already exists", ErrInvalidArgument, attr, id)
	}
	var batch Batch
	batch.AddInsert(ObjectItem{Key: ObjectKeyAttribute(id, attr), Value: ptr(ObjectValueAttribute(0))})
	return s.apply("create_attribute", &batch, nil)
}

// DeleteAttribute tombstones the Attribute record and all of its extents in
// one batch, returning the mapped device space to the allocator.
func (s *Store) DeleteAttribute(id ObjectID, attr AttributeID) error {
	attrVal, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return err
	}
	if attrVal == nil {
		return fmt.Errorf("%w: attribute %d of object %d", ErrNotFound, attr, id)
	}
	var batch Batch
	batch.AddTombstone(ObjectKeyAttribute(id, attr))
	var freed []Range[uint64]
	err = s.scanExtents(id, attr, func(rng Range[uint64], dev uint64, key ObjectKey) error {
		batch.AddTombstone(key)
		freed = append(freed, Range[uint64]{dev, dev + rng.Length()})
		return nil
	})
	if err != nil {
		return err
	}
	return s.apply("delete_attribute", &batch, freed)
}

// WriteExtent allocates device space for [r.Start, r.End) of an attribute,
// supersedes whatever live extents overlap it, grows the attribute size
// when the write extends past it, and returns the allocated device offset.
// The attribute must exist. On any failure nothing is applied and the fresh
// allocation is released.
func (s *Store) WriteExtent(id ObjectID, attr AttributeID, r Range[uint64]) (uint64, error) {
	if !r.IsValid() {
		return 0, fmt.Errorf("%w: bad extent range %v", ErrInvalidArgument, r)
	}
	attrVal, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return 0, err
	}
	if attrVal == nil {
		return 0, fmt.Errorf("%w: attribute %d of object %d", ErrNotFound, attr, id)
	}

	deviceOffset, err := s.alloc.Allocate(r.Length())
	if err != nil {
		return 0, fmt.Errorf("%w: %d bytes for obj %d attr %d: %w", ErrAllocFailed, r.Length(), id, attr, err)
	}

	var batch Batch
	freed, err := planExtentMutation(s.index, id, attr, r, true, deviceOffset, &batch)
	if err == nil && r.End > attrVal.Size {
		batch.AddInsert(ObjectItem{Key: ObjectKeyAttribute(id, attr), Value: ptr(ObjectValueAttribute(r.End))})
	}
	if err == nil {
		err = s.apply("write_extent", &batch, freed)
	}
	if err != nil {
		s.alloc.Free(deviceOffset, r.Length())
		return 0, err
	}
	return deviceOffset, nil
}

// PunchExtent unmaps [r.Start, r.End) of an attribute, splitting partially
// covered extents around the hole. Punching an already unmapped range is a
// no-op. The attribute size is left alone; holes are allowed.
func (s *Store) PunchExtent(id ObjectID, attr AttributeID, r Range[uint64]) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: bad extent range %v", ErrInvalidArgument, r)
	}
	attrVal, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return err
	}
	if attrVal == nil {
		return fmt.Errorf("%w: attribute %d of object %d", ErrNotFound, attr, id)
	}
	var batch Batch
	freed, err := planExtentMutation(s.index, id, attr, r, false, 0, &batch)
	if err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}
	return s.apply("punch_extent", &batch, freed)
}

// LinkChild adds a directory entry. The parent must be a directory, the
// child must exist, and the name must be unused.
func (s *Store) LinkChild(dir ObjectID, name string, child ObjectID) error {
	if name == "" {
		return fmt.Errorf("%w: empty child name", ErrInvalidArgument)
	}
	dirVal, err := s.getValue(ObjectKeyObject(dir))
	if err != nil {
		return err
	}
	if dirVal == nil {
		return fmt.Errorf("%w: object %d", ErrNotFound, dir)
	}
	if dirVal.ObjectType != TypeDirectory {
		return fmt.Errorf("%w: object %d is not a directory", ErrInvalidArgument, dir)
	}
	childVal, err := s.getValue(ObjectKeyObject(child))
	if err != nil {
		return err
	}
	if childVal == nil {
		return fmt.Errorf("%w: object %d", ErrNotFound, child)
	}
	existing, err := s.getValue(ObjectKeyChild(dir, name))
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %q already exists in directory %d", ErrInvalidArgument, name, dir)
	}
	var batch Batch
	batch.AddInsert(ObjectItem{Key: ObjectKeyChild(dir, name), Value: ptr(ObjectValueChild(child))})
	return s.apply("link_child", &batch, nil)
}

// UnlinkChild tombstones a directory entry. The referenced object itself is
// untouched; deleting it is a separate DeleteObject call.
func (s *Store) UnlinkChild(dir ObjectID, name string) error {
	existing, err := s.getValue(ObjectKeyChild(dir, name))
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %q in directory %d", ErrNotFound, name, dir)
	}
	var batch Batch
	batch.AddTombstone(ObjectKeyChild(dir, name))
	return s.apply("unlink_child", &batch, nil)
}

// LookupChild resolves a directory entry to an object ID.
func (s *Store) LookupChild(dir ObjectID, name string) (ObjectID, error) {
	v, err := s.getValue(ObjectKeyChild(dir, name))
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: %q in directory %d", ErrNotFound, name, dir)
	}
	return v.ChildID, nil
}

// GetObjectType returns the type stored in an object's Object record.
func (s *Store) GetObjectType(id ObjectID) (ObjectType, error) {
	v, err := s.getValue(ObjectKeyObject(id))
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: object %d", ErrNotFound, id)
	}
	return v.ObjectType, nil
}

// AttributeSize returns the logical size recorded for an attribute.
func (s *Store) AttributeSize(id ObjectID, attr AttributeID) (uint64, error) {
	v, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: attribute %d of object %d", ErrNotFound, attr, id)
	}
	return v.Size, nil
}

// ExtentMapping is one live extent of an attribute, as returned by
// AttributeExtents.
type ExtentMapping struct {
	Range        Range[uint64]
	DeviceOffset uint64
}

// AttributeExtents returns the live extents of an attribute in ascending
// order. The attribute must exist.
func (s *Store) AttributeExtents(id ObjectID, attr AttributeID) ([]ExtentMapping, error) {
	v, err := s.getValue(ObjectKeyAttribute(id, attr))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: attribute %d of object %d", ErrNotFound, attr, id)
	}
	var out []ExtentMapping
	err = s.scanExtents(id, attr, func(rng Range[uint64], dev uint64, key ObjectKey) error {
		out = append(out, ExtentMapping{rng, dev})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// apply commits one batch atomically, then releases superseded device space.
func (s *Store) apply(op string, batch *Batch, freed []Range[uint64]) error {
	if err := s.index.MergeInsert(batch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, f := range freed {
		s.alloc.Free(f.Start, f.Length())
	}
	s.logger.Debug("objstore: applied batch",
		slog.String("op", op),
		slog.Int("records", batch.Len()),
		slog.Int("freed", len(freed)),
		slog.Uint64("fingerprint", batch.Fingerprint()))
	return nil
}

// getValue retrieves the live value of a point key, nil if none. The key's
// lower bound equals itself for non-extent kinds, so a single seek-and-check
// suffices.
func (s *Store) getValue(key ObjectKey) (*ObjectValue, error) {
	iter, err := s.index.Seek(key.LowerBound())
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	for iter.Next() {
		item := iter.Item()
		c := ComparePrimary(item.Key, key)
		if c > 0 {
			break
		}
		if c == 0 {
			return item.Value, nil
		}
	}
	return nil, iter.Err()
}

// scanObject visits every live record of an object in primary order.
func (s *Store) scanObject(id ObjectID, f func(item ObjectItem) error) error {
	iter, err := s.index.Seek(ObjectKeyObject(id))
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.Next() {
		item := iter.Item()
		if item.Key.ObjectID != id {
			break
		}
		if item.Value == nil {
			continue
		}
		if err := f(item); err != nil {
			return err
		}
	}
	return iter.Err()
}

// scanExtents visits the live extents of one attribute in ascending order.
func (s *Store) scanExtents(id ObjectID, attr AttributeID, f func(rng Range[uint64], dev uint64, key ObjectKey) error) error {
	iter, err := s.index.Seek(ObjectKeyExtent(id, attr, Range[uint64]{0, 0}))
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.Next() {
		item := iter.Item()
		k := item.Key
		if k.ObjectID != id || k.Kind != KindExtent || k.AttributeID != attr {
			break
		}
		if item.Value == nil {
			continue
		}
		if err := f(k.Extent, item.Value.Extent.DeviceOffset, k); err != nil {
			return err
		}
	}
	return iter.Err()
}
