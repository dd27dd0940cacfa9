package refset

import (
	"crypto/sha256"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(b ...byte) Key {
	var k Key
	copy(k[:], b)
	return k
}

func TestEmptyRoot(t *testing.T) {
	s, err := New(sha256.New())
	require.NoError(t, err)
	require.Equal(t, emptyDigest(sha256.New()), s.Root())
	require.Zero(t, s.Size())
}

func TestSingleKeyRoot(t *testing.T) {
	s, err := New(sha256.New())
	require.NoError(t, err)

	k := testKey(0xAB)
	require.NoError(t, s.Insert(k))
	require.Equal(t, leafDigest(sha256.New(), k), s.Root())
	require.True(t, s.Contains(k))
	require.Equal(t, uint64(1), s.Size())

	require.NoError(t, s.Delete(k))
	require.Equal(t, emptyDigest(sha256.New()), s.Root())
	require.False(t, s.Contains(k))
}

func TestInsertIdempotentDeleteNotFound(t *testing.T) {
	s, err := New(sha256.New())
	require.NoError(t, err)

	k := testKey(1, 2, 3)
	require.NoError(t, s.Insert(k))
	root := s.Root()
	require.NoError(t, s.Insert(k))
	require.Equal(t, root, s.Root())
	require.Equal(t, uint64(1), s.Size())

	require.ErrorIs(t, s.Delete(testKey(9)), ErrNotFound)
	require.Equal(t, root, s.Root())
}

func TestCanonicalAcrossPermutations(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	keys := make([]Key, 12)
	for i := range keys {
		rng.Read(keys[i][:])
	}

	var want Digest
	for trial := 0; trial < 8; trial++ {
		s, err := New(sha256.New())
		require.NoError(t, err)
		for _, i := range rng.Perm(len(keys)) {
			require.NoError(t, s.Insert(keys[i]))
		}
		if trial == 0 {
			want = s.Root()
			continue
		}
		require.Equal(t, want, s.Root())
	}
}

func TestCollapseOnDelete(t *testing.T) {
	s, err := New(sha256.New())
	require.NoError(t, err)

	// Diverge at bit 1: a stays under 0x, b and c split deeper.
	a := testKey(0x00)
	b := testKey(0x40)
	c := testKey(0x60)
	for _, k := range []Key{a, b, c} {
		require.NoError(t, s.Insert(k))
	}

	require.NoError(t, s.Delete(c))
	require.NoError(t, s.Delete(b))
	require.Equal(t, leafDigest(sha256.New(), a), s.Root())

	require.NoError(t, s.Delete(a))
	require.Equal(t, emptyDigest(sha256.New()), s.Root())
}

func TestBadHasher(t *testing.T) {
	_, err := New(sha256.New224())
	require.ErrorIs(t, err, ErrBadHashSize)
}
