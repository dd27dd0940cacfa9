package merkleset

import (
	"fmt"
	"hash"
)

// TerminalKind identifies the node a proof's audit path terminates at.
type TerminalKind uint8

const (
	// TerminalEmpty means the search path for the key ran into an empty
	// subtree. Always a proof of exclusion.
	TerminalEmpty TerminalKind = 1
	// TerminalLeaf means the search path reached a leaf. A proof of
	// inclusion when the leaf holds the key, of exclusion otherwise.
	TerminalLeaf TerminalKind = 2
)

// ProofStep records one branch on the search path: the direction taken
// and the digest of the sibling not taken.
type ProofStep struct {
	Dir     uint8 // 0=went left, 1=went right
	Sibling Digest
}

// Proof is an audit path for one key against one root digest. Steps are
// ordered root -> terminal; Steps[i] is the branch at bit position i.
type Proof struct {
	Steps    []ProofStep
	Terminal TerminalKind
	// Leaf is the key of the encountered leaf. Only meaningful when
	// Terminal is TerminalLeaf; it differs from the proven key in an
	// exclusion proof.
	Leaf Key
}

// Prove generates a proof of inclusion or exclusion for key, whichever
// the current membership supports. It settles stale digests first and
// never fails.
func (s *Set) Prove(key Key) Proof {
	if s.root == noHandle {
		return Proof{Terminal: TerminalEmpty}
	}
	s.forceDigest(s.root)

	var steps []ProofStep
	cur := s.root
	depth := 0
	for {
		rec := s.ar.rec(cur)
		if slotKind(rec) == kindLeaf {
			return Proof{Steps: steps, Terminal: TerminalLeaf, Leaf: slotKey(rec)}
		}
		dir := keyBit(key, depth)
		sibling := s.empty
		if sib := slotChild(rec, dir^1); sib != noHandle {
			sibling = slotDigest(s.ar.rec(sib))
		}
		steps = append(steps, ProofStep{Dir: dir, Sibling: sibling})
		next := slotChild(rec, dir)
		if next == noHandle {
			return Proof{Steps: steps, Terminal: TerminalEmpty}
		}
		cur = next
		depth++
	}
}

// VerifyInclusion verifies that p proves key IS a member of the set
// committed to by root. Pure: it never touches a Set or its arena, and a
// mismatched or truncated proof fails closed.
func VerifyInclusion(hasher hash.Hash, root Digest, key Key, p Proof) (bool, error) {
	if err := checkHasher(hasher); err != nil {
		return false, err
	}
	if p.Terminal != TerminalLeaf || p.Leaf != key {
		return false, fmt.Errorf("%w: proof does not terminate at the key", ErrVerifyInclusionFailed)
	}
	got, err := foldProof(hasher, key, p)
	if err != nil {
		return false, err
	}
	if got != root {
		return false, ErrVerifyInclusionFailed
	}
	return true, nil
}

// VerifyExclusion verifies that p proves key is NOT a member of the set
// committed to by root.
func VerifyExclusion(hasher hash.Hash, root Digest, key Key, p Proof) (bool, error) {
	if err := checkHasher(hasher); err != nil {
		return false, err
	}
	if p.Terminal == TerminalLeaf && p.Leaf == key {
		return false, fmt.Errorf("%w: proof terminates at the key", ErrVerifyExclusionFailed)
	}
	got, err := foldProof(hasher, key, p)
	if err != nil {
		return false, err
	}
	if got != root {
		return false, ErrVerifyExclusionFailed
	}
	return true, nil
}

// foldProof recomputes the root commitment from the terminal node's own
// digest, combining upward with each recorded sibling in left/right
// order according to the recorded direction. Directions must retrace the
// search path of key.
func foldProof(hasher hash.Hash, key Key, p Proof) (Digest, error) {
	if len(p.Steps) > KeyBits {
		return Digest{}, fmt.Errorf("%w: path longer than the key", ErrMalformedProof)
	}

	var cur Digest
	switch p.Terminal {
	case TerminalEmpty:
		cur = EmptyDigest(hasher)
	case TerminalLeaf:
		cur = LeafDigest(hasher, p.Leaf)
	default:
		return Digest{}, fmt.Errorf("%w: unknown terminal kind", ErrMalformedProof)
	}

	for i := len(p.Steps) - 1; i >= 0; i-- {
		step := p.Steps[i]
		if step.Dir != keyBit(key, i) {
			return Digest{}, fmt.Errorf("%w: path dir mismatch at bit %d", ErrMalformedProof, i)
		}
		if step.Dir == 0 {
			cur = BranchDigest(hasher, cur, step.Sibling)
		} else {
			cur = BranchDigest(hasher, step.Sibling, cur)
		}
	}
	return cur, nil
}
