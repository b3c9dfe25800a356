package objstore

import "fmt"

type (
	// ObjectID identifies an object within the store.
	ObjectID uint64
	// AttributeID identifies a named data stream of an object. Extents of
	// different attributes never compare as overlapping because the
	// attribute partitions the keyspace.
	AttributeID uint64
)

// KeyKind discriminates the four record kinds. The declared order is the
// on-disk cross-kind order and must never be changed without a format
// migration: within one object, the Object record sorts first, then
// Attribute records, then Extent records, then Child records.
type KeyKind uint8

const (
	KindObject KeyKind = iota
	KindAttribute
	KindExtent
	KindChild
)

func (k KeyKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindAttribute:
		return "attribute"
	case KindExtent:
		return "extent"
	case KindChild:
		return "child"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ExtentKey identifies a mapped byte range of one attribute.
type ExtentKey struct {
	AttributeID AttributeID
	Range       Range[uint64]
}

// LowerBound returns the synthetic key to seek with when scanning for
// records that might cover Range.Start. Because the primary order sorts
// extents by range end, a record starting before Range.Start but extending
// into it has end > Range.Start and therefore sorts at or after the
// returned key.
func (k ExtentKey) LowerBound() ExtentKey {
	return ExtentKey{k.AttributeID, Range[uint64]{0, k.Range.Start + 1}}
}

func (k ExtentKey) String() string {
	return fmt.Sprintf("attr %d %v", k.AttributeID, k.Range)
}

// ObjectKey is the totally ordered key of one record. It is a closed sum
// over the four kinds: only the fields of the active kind are meaningful,
// and every consumer switches exhaustively on Kind. Construct via the
// ObjectKey* functions, never literally.
type ObjectKey struct {
	ObjectID ObjectID
	Kind     KeyKind

	AttributeID AttributeID   // KindAttribute, KindExtent
	Extent      Range[uint64] // KindExtent
	Name        string        // KindChild
}

// ObjectKeyObject marks that an object exists.
func ObjectKeyObject(id ObjectID) ObjectKey {
	return ObjectKey{ObjectID: id, Kind: KindObject}
}

// ObjectKeyAttribute marks that a named data stream exists on an object.
func ObjectKeyAttribute(id ObjectID, attr AttributeID) ObjectKey {
	return ObjectKey{ObjectID: id, Kind: KindAttribute, AttributeID: attr}
}

// ObjectKeyExtent identifies a mapped byte range within an attribute.
func ObjectKeyExtent(id ObjectID, attr AttributeID, r Range[uint64]) ObjectKey {
	return ObjectKey{ObjectID: id, Kind: KindExtent, AttributeID: attr, Extent: r}
}

// ObjectKeyChild names a child of a directory object.
func ObjectKeyChild(id ObjectID, name string) ObjectKey {
	return ObjectKey{ObjectID: id, Kind: KindChild, Name: name}
}

// ExtentKey returns the extent portion of a KindExtent key.
func (k ObjectKey) ExtentKey() ExtentKey {
	if k.Kind != KindExtent {
		panic("ExtentKey called on " + k.Kind.String() + " key")
	}
	return ExtentKey{k.AttributeID, k.Extent}
}

// LowerBound returns the key to seek with when scanning for records at or
// after k. Extent keys are routed through the extent lower-bound transform;
// the other kinds are point keys whose lower bound is themselves.
func (k ObjectKey) LowerBound() ObjectKey {
	if k.Kind != KindExtent {
		return k
	}
	lb := k.ExtentKey().LowerBound()
	return ObjectKeyExtent(k.ObjectID, lb.AttributeID, lb.Range)
}

func (k ObjectKey) String() string {
	switch k.Kind {
	case KindObject:
		return fmt.Sprintf("obj %d", k.ObjectID)
	case KindAttribute:
		return fmt.Sprintf("obj %d attr %d", k.ObjectID, k.AttributeID)
	case KindExtent:
		return fmt.Sprintf("obj %d attr %d %v", k.ObjectID, k.AttributeID, k.Extent)
	case KindChild:
		return fmt.Sprintf("obj %d child %q", k.ObjectID, k.Name)
	default:
		return fmt.Sprintf("obj %d %v", k.ObjectID, k.Kind)
	}
}
