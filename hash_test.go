package merkleset

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2s"
)

func TestDigestDomainSeparation(t *testing.T) {
	hasher := sha256.New()

	var key Key
	empty := EmptyDigest(hasher)
	leaf := LeafDigest(hasher, key)
	branch := BranchDigest(hasher, empty, empty)

	// The three kinds must be pairwise distinct even over identical
	// payload bytes.
	require.NotEqual(t, empty, leaf)
	require.NotEqual(t, empty, branch)
	require.NotEqual(t, leaf, branch)
}

func TestDigestMatchesTaggedPrimitive(t *testing.T) {
	hasher := sha256.New()

	var key Key
	key[0] = 0xA5
	key[31] = 0x5A

	want := sha256.Sum256(append([]byte{tagLeaf}, key[:]...))
	require.Equal(t, Digest(want), LeafDigest(hasher, key))

	want = sha256.Sum256([]byte{tagEmpty})
	require.Equal(t, Digest(want), EmptyDigest(hasher))

	left := LeafDigest(hasher, key)
	right := EmptyDigest(hasher)
	input := append([]byte{tagBranch}, left[:]...)
	input = append(input, right[:]...)
	want = sha256.Sum256(input)
	require.Equal(t, Digest(want), BranchDigest(hasher, left, right))
}

func TestDigestStableAcrossCalls(t *testing.T) {
	hasher, err := blake2s.New256(nil)
	require.NoError(t, err)

	var key Key
	key[7] = 1

	first := LeafDigest(hasher, key)
	// Interleave unrelated work on the same hasher; digest functions
	// must Reset and not depend on prior state.
	_ = EmptyDigest(hasher)
	_ = HashKey(hasher, []byte("unrelated"))
	require.Equal(t, first, LeafDigest(hasher, key))
}

func TestCheckHasher(t *testing.T) {
	require.NoError(t, checkHasher(sha256.New()))
	require.ErrorIs(t, checkHasher(nil), ErrBadHashSize)
	require.ErrorIs(t, checkHasher(sha256.New224()), ErrBadHashSize)
}
