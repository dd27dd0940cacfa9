// Package refset is a plain recursive reference implementation of the
// authenticated set built by the root package. It shares the digest
// scheme but none of the code: nodes are garbage-collected values, every
// mutation rebuilds the touched path, and digests are recomputed from
// scratch on every read. That makes it slow and obviously correct, which
// is the point: the differential tests hold the arena engine to this
// package's observable behaviour.
package refset

import (
	"errors"
	"hash"

	"golang.org/x/crypto/blake2s"
)

// HashBytes is the fixed width of keys and digests.
const HashBytes = 32

// KeyBits is the number of traversable bit positions in a key.
const KeyBits = HashBytes * 8

type Key [HashBytes]byte

type Digest [HashBytes]byte

var (
	ErrBadHashSize = errors.New("refset: hasher output must be 32 bytes")
	ErrNotFound    = errors.New("refset: key not found")
)

// Set is the reference authenticated set. Not safe for concurrent use.
type Set struct {
	hasher hash.Hash
	root   node
	size   uint64
}

// New returns an empty reference set. A nil hasher selects blake2s.
func New(hasher hash.Hash) (*Set, error) {
	if hasher == nil {
		var err error
		hasher, err = blake2s.New256(nil)
		if err != nil {
			return nil, err
		}
	}
	if hasher.Size() != HashBytes {
		return nil, ErrBadHashSize
	}
	return &Set{hasher: hasher, root: empty}, nil
}

// Size returns the number of keys in the set.
func (s *Set) Size() uint64 { return s.size }

// Root recomputes and returns the membership commitment.
func (s *Set) Root() Digest { return s.root.digest(s.hasher) }

// Contains reports whether key is a member.
func (s *Set) Contains(key Key) bool { return s.root.contains(key, 0) }

// Insert adds key; inserting a present key is a no-op.
func (s *Set) Insert(key Key) error {
	next := s.root.insert(key, 0)
	if next != s.root {
		s.size++
	}
	s.root = next
	return nil
}

// Delete removes key, or returns ErrNotFound.
func (s *Set) Delete(key Key) error {
	next, found := s.root.remove(key, 0)
	if !found {
		return ErrNotFound
	}
	s.root = next
	s.size--
	return nil
}

type node interface {
	insert(key Key, depth int) node
	remove(key Key, depth int) (node, bool)
	contains(key Key, depth int) bool
	digest(hasher hash.Hash) Digest
}

type emptyNode struct{}

var empty node = emptyNode{}

func (emptyNode) insert(key Key, depth int) node { return leafNode{key: key} }

func (n emptyNode) remove(Key, int) (node, bool) { return n, false }

func (emptyNode) contains(Key, int) bool { return false }

func (emptyNode) digest(hasher hash.Hash) Digest { return emptyDigest(hasher) }

type leafNode struct{ key Key }

func (n leafNode) insert(key Key, depth int) node {
	if key == n.key {
		return n
	}
	return splitLeaves(n.key, key, depth)
}

func (n leafNode) remove(key Key, depth int) (node, bool) {
	if key == n.key {
		return empty, true
	}
	return n, false
}

func (n leafNode) contains(key Key, depth int) bool { return key == n.key }

func (n leafNode) digest(hasher hash.Hash) Digest { return leafDigest(hasher, n.key) }

type branchNode struct{ left, right node }

func (n *branchNode) insert(key Key, depth int) node {
	if keyBit(key, depth) == 0 {
		next := n.left.insert(key, depth+1)
		if next == n.left {
			return n
		}
		return &branchNode{left: next, right: n.right}
	}
	next := n.right.insert(key, depth+1)
	if next == n.right {
		return n
	}
	return &branchNode{left: n.left, right: next}
}

func (n *branchNode) remove(key Key, depth int) (node, bool) {
	var next, other node
	var found bool
	if keyBit(key, depth) == 0 {
		next, found = n.left.remove(key, depth+1)
		other = n.right
	} else {
		next, found = n.right.remove(key, depth+1)
		other = n.left
	}
	if !found {
		return n, false
	}
	// A branch never keeps a lone leaf below an empty sibling and never
	// keeps two empty children.
	if isEmpty(next) && isLeaf(other) {
		return other, true
	}
	if isLeaf(next) && isEmpty(other) {
		return next, true
	}
	if keyBit(key, depth) == 0 {
		return &branchNode{left: next, right: other}, true
	}
	return &branchNode{left: other, right: next}, true
}

func (n *branchNode) contains(key Key, depth int) bool {
	if keyBit(key, depth) == 0 {
		return n.left.contains(key, depth+1)
	}
	return n.right.contains(key, depth+1)
}

func (n *branchNode) digest(hasher hash.Hash) Digest {
	left := n.left.digest(hasher)
	right := n.right.digest(hasher)
	return branchDigest(hasher, left, right)
}

// splitLeaves builds the branch chain distinguishing two unequal keys,
// one branch per shared-prefix bit from depth down to the first bit
// where they diverge.
func splitLeaves(a, b Key, depth int) node {
	abit, bbit := keyBit(a, depth), keyBit(b, depth)
	if abit != bbit {
		br := &branchNode{}
		if abit == 0 {
			br.left, br.right = leafNode{key: a}, leafNode{key: b}
		} else {
			br.left, br.right = leafNode{key: b}, leafNode{key: a}
		}
		return br
	}
	child := splitLeaves(a, b, depth+1)
	if abit == 0 {
		return &branchNode{left: child, right: empty}
	}
	return &branchNode{left: empty, right: child}
}

func isEmpty(n node) bool {
	_, ok := n.(emptyNode)
	return ok
}

func isLeaf(n node) bool {
	_, ok := n.(leafNode)
	return ok
}

func keyBit(k Key, i int) uint8 {
	return (k[i>>3] >> (7 - (i & 7))) & 1
}
