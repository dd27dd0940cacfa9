package merkleset

import "hash"

// EmptyDigest computes H( 0x00 ), the constant digest of an empty subtree
// and of an empty set's root.
func EmptyDigest(hasher hash.Hash) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagEmpty})
	return sumDigest(hasher)
}

// LeafDigest computes H( 0x01 || key[32] ).
func LeafDigest(hasher hash.Hash, key Key) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagLeaf})
	_, _ = hasher.Write(key[:])
	return sumDigest(hasher)
}

// BranchDigest computes H( 0x02 || left[32] || right[32] ).
func BranchDigest(hasher hash.Hash, left, right Digest) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagBranch})
	_, _ = hasher.Write(left[:])
	_, _ = hasher.Write(right[:])
	return sumDigest(hasher)
}

// HashKey derives the set key for an arbitrary byte string. Members are
// always full-width hash outputs; this is the only place raw values are
// reduced to keys.
func HashKey(hasher hash.Hash, value []byte) Key {
	hasher.Reset()
	_, _ = hasher.Write(value)
	return Key(sumDigest(hasher))
}

// checkHasher rejects hash primitives whose output width does not match
// the key and digest width. All entry points that accept a hasher call
// this once, so the digest functions themselves stay infallible.
func checkHasher(hasher hash.Hash) error {
	if hasher == nil || hasher.Size() != HashBytes {
		return ErrBadHashSize
	}
	return nil
}

func sumDigest(hasher hash.Hash) Digest {
	var out Digest
	hasher.Sum(out[:0])
	return out
}
