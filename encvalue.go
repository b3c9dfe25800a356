package objstore

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Value encoding: a flags uvarint (format version), the kind byte, then a
// msgpack payload specific to the kind. The kind byte is redundant with the
// key and exists so a value can never be silently reinterpreted under a key
// of the wrong kind.
//
// Tombstones have no encoding; a tombstone is the absence of value bytes.

type valueFlags uint64

const (
	vfVerBit0 = valueFlags(1 << iota)
	vfVerBit1
	vfVerBit2
	vfVerBit3

	vfVerMask       = (vfVerBit0 | vfVerBit1 | vfVerBit2 | vfVerBit3)
	vfVer1          = vfVerBit0
	vfSupportedMask = vfVer1
	vfDefault       = vfVer1
)

type objectPayload struct {
	Type uint8 `msgpack:"t"`
}

type attributePayload struct {
	Size uint64 `msgpack:"s"`
}

type extentPayload struct {
	DeviceOffset uint64 `msgpack:"d"`
}

type childPayload struct {
	ObjectID uint64 `msgpack:"o"`
}

// EncodeValue returns the binary encoding of a value.
func EncodeValue(v ObjectValue) []byte {
	return AppendEncodedValue(nil, v)
}

// AppendEncodedValue appends the encoding of v to buf.
func AppendEncodedValue(buf []byte, v ObjectValue) []byte {
	bb := bytesBuilder{buf}
	bb.AppendUvarint(uint64(vfDefault))
	bb.AppendByte(byte(v.Kind))

	var payload any
	switch v.Kind {
	case KindObject:
		payload = objectPayload{uint8(v.ObjectType)}
	case KindAttribute:
		payload = attributePayload{v.Size}
	case KindExtent:
		payload = extentPayload{v.Extent.DeviceOffset}
	case KindChild:
		payload = childPayload{uint64(v.ChildID)}
	default:
		panic("unknown value kind " + v.Kind.String())
	}

	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	enc.SetSortMapKeys(true)
	err := enc.Encode(payload)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %v value using msgpack: %w", v.Kind, err))
	}
	return bb.Buf
}

// DecodeValue parses an encoded value. Errors wrap ErrCorrupt.
func DecodeValue(data []byte) (ObjectValue, error) {
	d := makeByteDecoder(data)
	flags, err := d.Uvarint()
	if err != nil {
		return ObjectValue{}, err
	}
	if (flags &^ uint64(vfSupportedMask)) != 0 {
		return ObjectValue{}, recordErrf(data, 0, nil, "unsupported value flags %x", flags)
	}
	if valueFlags(flags)&vfVerMask != vfVer1 {
		return ObjectValue{}, recordErrf(data, 0, nil, "unsupported value format %x", flags)
	}
	kind, err := d.Byte()
	if err != nil {
		return ObjectValue{}, err
	}

	v := ObjectValue{Kind: KeyKind(kind)}
	payloadOff := d.Off()
	var payloadErr error
	switch v.Kind {
	case KindObject:
		var p objectPayload
		payloadErr = unmarshalPayload(d.Rest(), &p)
		v.ObjectType = ObjectType(p.Type)
	case KindAttribute:
		var p attributePayload
		payloadErr = unmarshalPayload(d.Rest(), &p)
		v.Size = p.Size
	case KindExtent:
		var p extentPayload
		payloadErr = unmarshalPayload(d.Rest(), &p)
		v.Extent = ExtentValue{p.DeviceOffset}
	case KindChild:
		var p childPayload
		payloadErr = unmarshalPayload(d.Rest(), &p)
		v.ChildID = ObjectID(p.ObjectID)
	default:
		return ObjectValue{}, recordErrf(data, payloadOff, nil, "unknown value kind %d", kind)
	}
	if payloadErr != nil {
		return ObjectValue{}, recordErrf(data, payloadOff, payloadErr, "failed to decode %v payload", v.Kind)
	}
	return v, nil
}

func unmarshalPayload(data []byte, ptr any) error {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(ptr)
	msgpack.PutDecoder(dec)
	return err
}

// decodeItem reassembles a record from its encoded key and value, checking
// the kind/value pairing invariant. Empty value bytes decode as a tombstone.
func decodeItem(k, v []byte) (ObjectItem, error) {
	key, err := DecodeKey(k)
	if err != nil {
		return ObjectItem{}, err
	}
	if len(v) == 0 {
		return ObjectItem{Key: key}, nil
	}
	val, err := DecodeValue(v)
	if err != nil {
		return ObjectItem{}, err
	}
	it := ObjectItem{Key: key, Value: &val}
	if err := it.validate(); err != nil {
		return ObjectItem{}, err
	}
	return it, nil
}
