package objstore

import "cmp"

// Two total orders are defined over keys, deliberately exposed as two free
// functions rather than a single comparison method, so a call site cannot
// use the seeking order where the storage order is required or vice versa.
//
// ComparePrimary is the storage/iteration order. CompareLowerBound exists
// only to position a scan at the start of a query range. Both agree that
// ObjectID dominates, then the key kind, and both agree on AttributeID
// dominating the range fields of extent keys; they differ only in which
// range bound an extent compares by first.

// ComparePrimary orders keys for storage and iteration. Extent keys compare
// by range end before range start: seeking for X+1 in end order lands on
// the first record whose range can still contain offset X.
func ComparePrimary(a, b ObjectKey) int {
	if c := cmp.Compare(a.ObjectID, b.ObjectID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	switch a.Kind {
	case KindObject:
		return 0
	case KindAttribute:
		return cmp.Compare(a.AttributeID, b.AttributeID)
	case KindExtent:
		return compareExtentPrimary(a.ExtentKey(), b.ExtentKey())
	case KindChild:
		return cmp.Compare(a.Name, b.Name)
	default:
		panic("unknown key kind " + a.Kind.String())
	}
}

// CompareLowerBound orders keys for seeking to the start of a range scan.
// It must never disagree with ComparePrimary about the relative placement
// of non-extent keys; extent keys compare by range start first.
func CompareLowerBound(a, b ObjectKey) int {
	if a.Kind != KindExtent || b.Kind != KindExtent {
		return ComparePrimary(a, b)
	}
	if c := cmp.Compare(a.ObjectID, b.ObjectID); c != 0 {
		return c
	}
	return compareExtentLowerBound(a.ExtentKey(), b.ExtentKey())
}

func compareExtentPrimary(a, b ExtentKey) int {
	if c := cmp.Compare(a.AttributeID, b.AttributeID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Range.End, b.Range.End); c != 0 {
		return c
	}
	return cmp.Compare(a.Range.Start, b.Range.Start)
}

func compareExtentLowerBound(a, b ExtentKey) int {
	if c := cmp.Compare(a.AttributeID, b.AttributeID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.Range.End, b.Range.End)
}
