/*
Package objstore implements the record schema and extent algebra of a
copy-on-write object store layered on a log-structured merge index.

Every object (file, directory, attribute, byte range) is encoded as a
totally ordered key/value record, so a generic merge index can locate it in
logarithmic time:

1. Object records mark that an object exists and carry its type.

2. Attribute records mark a named data stream and carry its logical size.

3. Extent records map a half-open byte range of an attribute to device
bytes.

4. Child records name the children of a directory.

# Orderings

Two total orders are defined over keys, as two separate comparison
functions rather than one comparison method.

**Primary order** places and iterates records. Extent keys compare by range
end before range start, so seeking for X+1 lands on the first record whose
range can still contain offset X — the standard trick for interval indexing
in a key-ordered structure.

**Lower-bound order** only constructs seek keys for range scans. For an
extent key, LowerBound produces a synthetic key that picks up records
starting before the query floor but reaching into it; other kinds are point
keys and are their own lower bound.

# Extent mutation

Writes and punches go through a single mutation planner that supersedes
overlapping live extents, splitting partially covered ones into retained
fragments with adjusted device offsets, so that no two live records ever
claim the same byte. The resulting inserts and tombstones form one batch
that the index must apply atomically.

# Binary encoding

Keys use a fixed big-endian field encoding chosen so that byte order equals
primary order; any byte-sorted store can back the index without a custom
comparator. Values are a small versioned header plus a msgpack payload. The
field order of both is part of the on-disk contract.
*/
package objstore
