// Package merkleset implements an authenticated set of fixed-width keys.
package merkleset

/*

# Merkle set primitives (cache-local, mutable)

This package stores a set of 32-byte keys in a binary trie keyed by the bits
of each member, MSB first, and commits to the exact membership with a single
32-byte root digest. Compact proofs of inclusion and exclusion verify against
the root alone.

It follows the same style as `go-merklelog/mmr` and `go-merklelog/urkle`:

- small, composable functions
- explicit byte layouts
- index arithmetic instead of pointers
- a burden of knowledge on the caller for hot paths

## Canonical form

The shape of the trie is a pure function of the key set, never of the
insertion or deletion order. After every mutation:

 1. no branch has two empty children
 2. no branch has an empty child and a leaf child; that pair is always
    collapsed to the leaf itself, one level up
 3. two keys first differing at bit d produce a branch at every bit
    position <= d along their shared prefix, and nowhere deeper

Because of 1-3 the root digest is a canonical commitment: any history that
produces the same membership produces the same root.

## Digests

Node digests are domain separated with a single tag byte mixed into the
hash input, so no leaf digest can collide in form with a branch or empty
digest:

	empty:  H( 0x00 )
	leaf:   H( 0x01 || key[32] )
	branch: H( 0x02 || leftDigest[32] || rightDigest[32] )

An absent child contributes the empty digest to its parent. The hash
primitive is injected as a `hash.Hash` with 32-byte output; blake2s is the
default.

Branch digests are cached in the node record and invalidated along the
exact mutated path only. Recomputation is lazy: it happens on the next
Root or Prove, bottom-up.

## Arena layout

Nodes live in fixed-capacity blocks rather than being allocated
individually, so a descent touches few distinct memory regions. A handle
(block index + slot index) substitutes for a pointer. Within a block:

	block:  freeHead 2 liveCount 2 [slot]*
	slot:   kind 1 flags 1 freeNext 2 pad 4 left 8 right 8 key 32 digest 32

Vacant slots form an intrusive free list threaded through freeNext, so a
block needs no side table to find its spare capacity. A block whose last
live slot is vacated is returned to a free-block pool and recycled before
the arena grows.

Placement is locality-hinted: when a split replaces a leaf with a branch
chain, the new nodes are allocated in the leaf's own block whenever
capacity allows. Placement is a performance property only; any placement
is semantically valid while handles stay consistent.

## Concurrency

Single writer. Insert and Delete must not interleave with each other or
with reads on the same Set; intermediate states during a multi-level split
or collapse do not satisfy the canonical invariants. Contains and Prove
are read-only once the root digest is clean.

The recursive reference implementation in `refset` is the specification of
correctness; the differential tests in this package hold the two to
identical observable behaviour for every operation sequence.

*/
