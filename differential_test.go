package merkleset

import (
	"crypto/sha256"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-merkleset/refset"
)

// The recursive reference implementation is the specification of
// correctness. These tests drive both implementations through the same
// operation sequences and require identical observable behaviour after
// every single operation: same root, same membership answers, same
// errors.

func TestDifferentialRandomOps(t *testing.T) {
	s := newTestSet(t, WithBlockSlots(8))
	ref, err := refset.New(sha256.New())
	require.NoError(t, err)

	keys := testKeys(21, 48)
	rng := rand.New(rand.NewSource(21))

	for op := 0; op < 1000; op++ {
		k := keys[rng.Intn(len(keys))]
		switch rng.Intn(3) {
		case 0, 1:
			require.NoError(t, s.Insert(k))
			require.NoError(t, ref.Insert(refset.Key(k)))
		case 2:
			errGot := s.Delete(k)
			errWant := ref.Delete(refset.Key(k))
			if errWant != nil {
				require.ErrorIs(t, errGot, ErrNotFound, "op %d", op)
			} else {
				require.NoError(t, errGot, "op %d", op)
			}
		}

		require.Equal(t, refset.Digest(s.Root()), ref.Root(), "root diverged at op %d", op)
		require.Equal(t, ref.Size(), s.Size(), "size diverged at op %d", op)

		probe := keys[rng.Intn(len(keys))]
		require.Equal(t,
			ref.Contains(refset.Key(probe)), s.Contains(probe),
			"membership diverged at op %d", op)
	}
}

func TestDifferentialDrainToEmpty(t *testing.T) {
	s := newTestSet(t)
	ref, err := refset.New(sha256.New())
	require.NoError(t, err)

	keys := testKeys(22, 32)
	for _, k := range keys {
		require.NoError(t, s.Insert(k))
		require.NoError(t, ref.Insert(refset.Key(k)))
	}
	require.Equal(t, refset.Digest(s.Root()), ref.Root())

	rng := rand.New(rand.NewSource(22))
	for _, i := range rng.Perm(len(keys)) {
		require.NoError(t, s.Delete(keys[i]))
		require.NoError(t, ref.Delete(refset.Key(keys[i])))
		require.Equal(t, refset.Digest(s.Root()), ref.Root())
	}
	require.Zero(t, s.Size())
	require.Zero(t, s.ar.liveNodes())
}

// Proofs generated by the engine must verify against the oracle's root,
// not just the engine's own: the two roots are the same commitment.
func TestDifferentialProofsAgainstOracleRoot(t *testing.T) {
	s := newTestSet(t)
	ref, err := refset.New(sha256.New())
	require.NoError(t, err)

	keys := testKeys(23, 16)
	for _, k := range keys {
		require.NoError(t, s.Insert(k))
		require.NoError(t, ref.Insert(refset.Key(k)))
	}
	oracleRoot := Digest(ref.Root())

	for _, k := range keys {
		ok, err := VerifyInclusion(sha256.New(), oracleRoot, k, s.Prove(k))
		require.NoError(t, err)
		require.True(t, ok)
	}

	missing := testKeys(24, 4)
	for _, k := range missing {
		ok, err := VerifyExclusion(sha256.New(), oracleRoot, k, s.Prove(k))
		require.NoError(t, err)
		require.True(t, ok)
	}
}
