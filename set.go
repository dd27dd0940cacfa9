package merkleset

import (
	"hash"

	"golang.org/x/crypto/blake2s"
)

// Set is a mutable authenticated set of 32-byte keys.
//
// Set is not safe for concurrent use: callers needing concurrent
// mutation must serialize externally.
type Set struct {
	hasher hash.Hash
	empty  Digest
	ar     *arena
	root   handle
	size   uint64
}

type config struct {
	hasher     hash.Hash
	blockSlots uint32
	maxBlocks  uint32
}

// Option configures a Set constructed by New.
type Option func(*config)

// WithHasher overrides the blake2s default hash primitive. The hasher
// must produce 32-byte digests.
func WithHasher(hasher hash.Hash) Option {
	return func(c *config) { c.hasher = hasher }
}

// WithBlockSlots sets the node capacity of one arena block.
func WithBlockSlots(n uint32) Option {
	return func(c *config) { c.blockSlots = n }
}

// WithMaxBlocks caps the number of arena blocks. Once the cap is reached
// a mutation that needs more nodes fails with ErrArenaExhausted, leaving
// the set untouched. Zero means unbounded.
func WithMaxBlocks(n uint32) Option {
	return func(c *config) { c.maxBlocks = n }
}

func New(opts ...Option) (*Set, error) {
	cfg := config{blockSlots: DefaultBlockSlots}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasher == nil {
		hasher, err := blake2s.New256(nil)
		if err != nil {
			return nil, err
		}
		cfg.hasher = hasher
	}
	if err := checkHasher(cfg.hasher); err != nil {
		return nil, err
	}
	if cfg.blockSlots == 0 || cfg.blockSlots > maxBlockSlots {
		return nil, ErrBadBlockSlots
	}
	return &Set{
		hasher: cfg.hasher,
		empty:  EmptyDigest(cfg.hasher),
		ar:     newArena(cfg.blockSlots, cfg.maxBlocks),
		root:   noHandle,
	}, nil
}

// Size returns the number of keys in the set.
func (s *Set) Size() uint64 { return s.size }

// Root returns the current membership commitment. An empty set commits
// to the fixed empty digest. Stale branch digests along previously
// mutated paths are recomputed bottom-up before the root is read.
func (s *Set) Root() Digest {
	if s.root == noHandle {
		return s.empty
	}
	return s.forceDigest(s.root)
}

// Contains reports whether key is a member. It never mutates the set.
func (s *Set) Contains(key Key) bool {
	cur := s.root
	depth := 0
	for cur != noHandle {
		rec := s.ar.rec(cur)
		if slotKind(rec) == kindLeaf {
			return slotKey(rec) == key
		}
		cur = slotChild(rec, keyBit(key, depth))
		depth++
	}
	return false
}

// Insert adds key to the set. Inserting a present key is a no-op, not an
// error. On ErrArenaExhausted the set is unchanged.
func (s *Set) Insert(key Key) error {
	if s.root == noHandle {
		leaf, err := s.ar.alloc(noHandle)
		if err != nil {
			return err
		}
		slotWriteLeaf(s.ar.rec(leaf), key, LeafDigest(s.hasher, key))
		s.root = leaf
		s.size++
		return nil
	}

	var path [KeyBits]handle
	n := 0
	cur := s.root
	depth := 0
	for {
		rec := s.ar.rec(cur)
		if slotKind(rec) == kindLeaf {
			existing := slotKey(rec)
			if existing == key {
				return nil
			}
			return s.split(path[:n], cur, existing, key, depth)
		}
		path[n] = cur
		n++
		dir := keyBit(key, depth)
		next := slotChild(rec, dir)
		if next == noHandle {
			leaf, err := s.ar.alloc(cur)
			if err != nil {
				return err
			}
			slotWriteLeaf(s.ar.rec(leaf), key, LeafDigest(s.hasher, key))
			slotSetChild(rec, dir, leaf)
			s.markDirty(path[:n])
			s.size++
			return nil
		}
		cur = next
		depth++
	}
}

// split replaces the leaf at depth holding existing with a chain of
// branches, one per bit position from depth to the first bit where
// existing and key diverge, terminating in the two leaves. Branches are
// created only down to the point of divergence; the far side of each
// intermediate branch stays empty.
//
// Every slot is reserved before any link is rewritten, so an exhausted
// arena fails the insert without touching the prior structure.
func (s *Set) split(path []handle, leafH handle, existing, key Key, depth int) error {
	d, _ := divergingBit(existing, key)

	branches := make([]handle, d-depth+1)
	hint := leafH
	for i := range branches {
		h, err := s.ar.alloc(hint)
		if err != nil {
			for _, b := range branches[:i] {
				s.ar.free(b)
			}
			return err
		}
		branches[i] = h
		hint = h
	}
	newLeaf, err := s.ar.alloc(hint)
	if err != nil {
		for _, b := range branches {
			s.ar.free(b)
		}
		return err
	}

	slotWriteLeaf(s.ar.rec(newLeaf), key, LeafDigest(s.hasher, key))

	// Diverging level: one leaf per side.
	bottom := branches[len(branches)-1]
	if keyBit(key, d) == 1 {
		slotWriteBranch(s.ar.rec(bottom), leafH, newLeaf)
	} else {
		slotWriteBranch(s.ar.rec(bottom), newLeaf, leafH)
	}

	// Shared-prefix levels, deepest first.
	for i := len(branches) - 2; i >= 0; i-- {
		if keyBit(key, depth+i) == 1 {
			slotWriteBranch(s.ar.rec(branches[i]), noHandle, branches[i+1])
		} else {
			slotWriteBranch(s.ar.rec(branches[i]), branches[i+1], noHandle)
		}
	}

	if len(path) == 0 {
		s.root = branches[0]
	} else {
		slotSetChild(s.ar.rec(path[len(path)-1]), keyBit(key, depth-1), branches[0])
	}
	s.markDirty(path)
	s.size++
	return nil
}

// Delete removes key from the set, collapsing any branch left with an
// empty child and a leaf child back into that leaf, cascading toward the
// root. Returns ErrNotFound if key is absent.
func (s *Set) Delete(key Key) error {
	if s.root == noHandle {
		return ErrNotFound
	}
	rootRec := s.ar.rec(s.root)
	if slotKind(rootRec) == kindLeaf {
		if slotKey(rootRec) != key {
			return ErrNotFound
		}
		s.ar.free(s.root)
		s.root = noHandle
		s.size--
		return nil
	}

	var path [KeyBits]handle
	n := 0
	cur := s.root
	depth := 0
	for {
		rec := s.ar.rec(cur)
		if slotKind(rec) == kindLeaf {
			if slotKey(rec) != key {
				return ErrNotFound
			}
			break
		}
		path[n] = cur
		n++
		next := slotChild(rec, keyBit(key, depth))
		if next == noHandle {
			return ErrNotFound
		}
		cur = next
		depth++
	}

	s.ar.free(cur)

	// Walk back up. promoted is the leaf being hoisted into the vacated
	// position, or noHandle while the vacated side is simply empty.
	promoted := noHandle
	i := n - 1
	for i >= 0 {
		br := path[i]
		rec := s.ar.rec(br)
		dir := keyBit(key, i)
		slotSetChild(rec, dir, promoted)
		other := slotChild(rec, dir^1)

		if promoted == noHandle {
			// A branch may keep one empty side while the other side
			// still splits further; it may not keep a lone leaf.
			if slotKind(s.ar.rec(other)) != kindLeaf {
				break
			}
			promoted = other
		} else if other != noHandle {
			break
		}
		s.ar.free(br)
		i--
	}
	if i < 0 {
		s.root = promoted
	} else {
		s.markDirty(path[:i+1])
	}
	s.size--
	return nil
}

// InsertValue hashes value into a Key and inserts it, returning the key.
func (s *Set) InsertValue(value []byte) (Key, error) {
	key := HashKey(s.hasher, value)
	return key, s.Insert(key)
}

// DeleteValue hashes value into a Key and deletes it.
func (s *Set) DeleteValue(value []byte) error {
	return s.Delete(HashKey(s.hasher, value))
}

// ContainsValue hashes value into a Key and reports membership.
func (s *Set) ContainsValue(value []byte) bool {
	return s.Contains(HashKey(s.hasher, value))
}

func (s *Set) markDirty(path []handle) {
	for _, h := range path {
		slotSetDirty(s.ar.rec(h))
	}
}

// forceDigest settles the cached digest of the subtree at h and returns
// it. A clean branch never has dirty descendants, so recursion stops at
// the first clean node.
func (s *Set) forceDigest(h handle) Digest {
	rec := s.ar.rec(h)
	if slotKind(rec) == kindLeaf || !slotDirty(rec) {
		return slotDigest(rec)
	}
	d := BranchDigest(s.hasher, s.childDigest(slotLeft(rec)), s.childDigest(slotRight(rec)))
	slotSetDigest(rec, d)
	slotClearDirty(rec)
	return d
}

func (s *Set) childDigest(h handle) Digest {
	if h == noHandle {
		return s.empty
	}
	return s.forceDigest(h)
}
