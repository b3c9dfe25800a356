package objstore

// Binary key encoding. The encoding is order-preserving: for any two keys,
// bytes.Compare over their encodings agrees with ComparePrimary. That makes
// any byte-sorted store (Bolt, an SSTable, a sorted slice) iterate records
// in primary order with no custom comparator.
//
// Layout (all integers big-endian, fixed width):
//
//	key = ver:8 objectID:64 kind:8 fields
//	fields(object)    = -
//	fields(attribute) = attributeID:64
//	fields(extent)    = attributeID:64 rangeEnd:64 rangeStart:64
//	fields(child)     = name bytes
//
// The field order doubles as the comparison order and is part of the
// on-disk contract; reordering it requires a format migration.

const keyFormatVer1 = 1

// EncodeKey returns the order-preserving binary encoding of a key.
func EncodeKey(k ObjectKey) []byte {
	return AppendEncodedKey(nil, k)
}

// AppendEncodedKey appends the encoding of k to buf.
func AppendEncodedKey(buf []byte, k ObjectKey) []byte {
	bb := bytesBuilder{buf}
	bb.EnsureExtra(2 + 8*4 + len(k.Name))
	bb.AppendByte(keyFormatVer1)
	bb.AppendFixedUint64(uint64(k.ObjectID))
	bb.AppendByte(byte(k.Kind))
	switch k.Kind {
	case KindObject:
	case KindAttribute:
		bb.AppendFixedUint64(uint64(k.AttributeID))
	case KindExtent:
		bb.AppendFixedUint64(uint64(k.AttributeID))
		bb.AppendFixedUint64(k.Extent.End)
		bb.AppendFixedUint64(k.Extent.Start)
	case KindChild:
		_, _ = bb.Write([]byte(k.Name))
	default:
		panic("unknown key kind " + k.Kind.String())
	}
	return bb.Buf
}

// DecodeKey parses an encoded key. Errors wrap ErrCorrupt.
func DecodeKey(data []byte) (ObjectKey, error) {
	d := makeByteDecoder(data)
	ver, err := d.Byte()
	if err != nil {
		return ObjectKey{}, err
	}
	if ver != keyFormatVer1 {
		return ObjectKey{}, recordErrf(data, 0, nil, "unsupported key format %d", ver)
	}
	id, err := d.FixedUint64()
	if err != nil {
		return ObjectKey{}, err
	}
	kind, err := d.Byte()
	if err != nil {
		return ObjectKey{}, err
	}
	k := ObjectKey{ObjectID: ObjectID(id), Kind: KeyKind(kind)}
	switch k.Kind {
	case KindObject:
	case KindAttribute:
		attr, err := d.FixedUint64()
		if err != nil {
			return ObjectKey{}, err
		}
		k.AttributeID = AttributeID(attr)
	case KindExtent:
		attr, err := d.FixedUint64()
		if err != nil {
			return ObjectKey{}, err
		}
		end, err := d.FixedUint64()
		if err != nil {
			return ObjectKey{}, err
		}
		start, err := d.FixedUint64()
		if err != nil {
			return ObjectKey{}, err
		}
		k.AttributeID = AttributeID(attr)
		k.Extent = Range[uint64]{start, end}
	case KindChild:
		k.Name = string(d.Rest())
	default:
		return ObjectKey{}, recordErrf(data, d.Off(), nil, "unknown key kind %d", kind)
	}
	if len(d.Buf) != 0 {
		return ObjectKey{}, recordErrf(data, d.Off(), nil, "trailing garbage after %v key", k.Kind)
	}
	return k, nil
}
