package objstore

import "fmt"

// ObjectType is stored in the Object record of every object.
type ObjectType uint8

const (
	TypeFile ObjectType = iota
	TypeDirectory
)

func (t ObjectType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ExtentValue maps the extent key's logical range onto device bytes
// starting at DeviceOffset.
type ExtentValue struct {
	DeviceOffset uint64
}

// ObjectValue is the payload sum type, paired 1:1 with the key kinds: an
// ObjectValue of kind K is only ever stored under an ObjectKey of the same
// kind. The pairing is enforced when a batch is assembled and re-checked
// defensively when records are decoded.
type ObjectValue struct {
	Kind KeyKind

	ObjectType ObjectType  // KindObject
	Size       uint64      // KindAttribute
	Extent     ExtentValue // KindExtent
	ChildID    ObjectID    // KindChild
}

func ObjectValueObject(t ObjectType) ObjectValue {
	return ObjectValue{Kind: KindObject, ObjectType: t}
}

func ObjectValueAttribute(size uint64) ObjectValue {
	return ObjectValue{Kind: KindAttribute, Size: size}
}

func ObjectValueExtent(deviceOffset uint64) ObjectValue {
	return ObjectValue{Kind: KindExtent, Extent: ExtentValue{deviceOffset}}
}

func ObjectValueChild(id ObjectID) ObjectValue {
	return ObjectValue{Kind: KindChild, ChildID: id}
}

func (v ObjectValue) String() string {
	switch v.Kind {
	case KindObject:
		return v.ObjectType.String()
	case KindAttribute:
		return fmt.Sprintf("size %d", v.Size)
	case KindExtent:
		return fmt.Sprintf("dev %d", v.Extent.DeviceOffset)
	case KindChild:
		return fmt.Sprintf("-> obj %d", v.ChildID)
	default:
		return v.Kind.String()
	}
}

// ObjectItem is the atomic unit stored, iterated and merged by the index.
// A nil Value is a tombstone: it deletes whatever the key previously mapped
// to, and is dropped by the index engine once no layer beneath it still
// holds the deleted record.
type ObjectItem struct {
	Key   ObjectKey
	Value *ObjectValue
}

func (it ObjectItem) IsTombstone() bool {
	return it.Value == nil
}

func (it ObjectItem) validate() error {
	if it.Value != nil && it.Value.Kind != it.Key.Kind {
		return fmt.Errorf("%w: %v value paired with key %v", ErrCorrupt, it.Value.Kind, it.Key)
	}
	if it.Key.Kind == KindExtent && !it.Key.Extent.IsValid() {
		return fmt.Errorf("%w: empty extent range in key %v", ErrCorrupt, it.Key)
	}
	return nil
}

func (it ObjectItem) String() string {
	if it.Value == nil {
		return it.Key.String() + " = tombstone"
	}
	return it.Key.String() + " = " + it.Value.String()
}
