package refset

import "hash"

// Digest scheme shared with the arena engine, written out independently
// so the two implementations only agree if both got it right:
//
//	empty:  H( 0x00 )
//	leaf:   H( 0x01 || key[32] )
//	branch: H( 0x02 || left[32] || right[32] )
const (
	tagEmpty  = 0x00
	tagLeaf   = 0x01
	tagBranch = 0x02
)

func emptyDigest(hasher hash.Hash) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagEmpty})
	return sumDigest(hasher)
}

func leafDigest(hasher hash.Hash, key Key) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagLeaf})
	_, _ = hasher.Write(key[:])
	return sumDigest(hasher)
}

func branchDigest(hasher hash.Hash, left, right Digest) Digest {
	hasher.Reset()
	_, _ = hasher.Write([]byte{tagBranch})
	_, _ = hasher.Write(left[:])
	_, _ = hasher.Write(right[:])
	return sumDigest(hasher)
}

func sumDigest(hasher hash.Hash) Digest {
	var out Digest
	hasher.Sum(out[:0])
	return out
}
