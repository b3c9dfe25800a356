package objstore

import (
	"slices"
	"testing"
)

func sampleKeys() []ObjectKey {
	var keys []ObjectKey
	for _, id := range []ObjectID{1, 2} {
		keys = append(keys, ObjectKeyObject(id))
		for _, attr := range []AttributeID{0, 1} {
			keys = append(keys, ObjectKeyAttribute(id, attr))
			for _, r := range smallRanges() {
				if r.IsValid() {
					keys = append(keys, ObjectKeyExtent(id, attr, r))
				}
			}
		}
		keys = append(keys, ObjectKeyChild(id, "a"), ObjectKeyChild(id, "ab"), ObjectKeyChild(id, "b"))
	}
	return keys
}

func TestPrimaryOrderKindEscalation(t *testing.T) {
	// Within one object: Object < Attribute < Extent < Child.
	ordered := []ObjectKey{
		ObjectKeyObject(7),
		ObjectKeyAttribute(7, 0),
		ObjectKeyAttribute(7, 1),
		ObjectKeyExtent(7, 0, Range[uint64]{0, 10}),
		ObjectKeyExtent(7, 1, Range[uint64]{0, 10}),
		ObjectKeyChild(7, "a"),
		ObjectKeyChild(7, "b"),
		ObjectKeyObject(8),
	}
	for i := range ordered {
		for j := range ordered {
			got := ComparePrimary(ordered[i], ordered[j])
			want := sign(i - j)
			if sign(got) != want {
				t.Errorf("** ComparePrimary(%v, %v) = %d, wanted sign %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestPrimaryOrderExtentsByEnd(t *testing.T) {
	a := ObjectKeyExtent(1, 0, Range[uint64]{0, 10})
	b := ObjectKeyExtent(1, 0, Range[uint64]{5, 8})
	if ComparePrimary(a, b) <= 0 {
		t.Errorf("** extent ending at 10 must sort after extent ending at 8")
	}
	if CompareLowerBound(a, b) >= 0 {
		t.Errorf("** extent starting at 0 must sort before extent starting at 5 in lower-bound order")
	}
}

func TestLowerBoundMonotonicity(t *testing.T) {
	// For extent keys k1, k2 with k1.start <= k2.start, the lower bounds
	// must not be inverted, or range scans would miss data.
	var extents []ObjectKey
	for _, k := range sampleKeys() {
		if k.Kind == KindExtent {
			extents = append(extents, k)
		}
	}
	for _, k1 := range extents {
		for _, k2 := range extents {
			if k1.ObjectID != k2.ObjectID || k1.AttributeID != k2.AttributeID {
				continue
			}
			if k1.Extent.Start <= k2.Extent.Start {
				if CompareLowerBound(k1.LowerBound(), k2.LowerBound()) > 0 {
					t.Errorf("** lower bound of %v sorts after lower bound of %v", k1, k2)
				}
			}
		}
	}
}

func TestLowerBoundAgreesForPointKeys(t *testing.T) {
	for _, a := range sampleKeys() {
		for _, b := range sampleKeys() {
			if a.Kind == KindExtent || b.Kind == KindExtent {
				continue
			}
			if sign(CompareLowerBound(a, b)) != sign(ComparePrimary(a, b)) {
				t.Errorf("** orders disagree for point keys %v, %v", a, b)
			}
		}
	}
}

func TestLowerBoundCoversEarlierStarts(t *testing.T) {
	// A stored extent reaching into the queried range sorts at or after
	// the query's lower-bound key in primary order, so a seek finds it.
	stored := ObjectKeyExtent(1, 0, Range[uint64]{0, 100})
	query := ObjectKeyExtent(1, 0, Range[uint64]{50, 60})
	if ComparePrimary(stored, query.LowerBound()) < 0 {
		t.Errorf("** stored extent %v sorts before lower bound of %v", stored, query)
	}

	// An extent ending before the query floor sorts strictly before.
	gone := ObjectKeyExtent(1, 0, Range[uint64]{0, 50})
	if ComparePrimary(gone, query.LowerBound()) >= 0 {
		t.Errorf("** extent %v ending at the query floor must sort before the lower bound", gone)
	}
}

func TestPrimaryOrderIsTotal(t *testing.T) {
	keys := sampleKeys()
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, ComparePrimary)
	for i := 1; i < len(sorted); i++ {
		if ComparePrimary(sorted[i-1], sorted[i]) > 0 {
			t.Fatalf("** sort is not consistent at %d: %v > %v", i, sorted[i-1], sorted[i])
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
