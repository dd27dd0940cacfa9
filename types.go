package merkleset

import "errors"

// HashBytes is the fixed width of keys and digests.
const HashBytes = 32

// KeyBits is the number of traversable bit positions in a key.
const KeyBits = HashBytes * 8

// Key is a set member, traversed MSB-first from bit 0.
type Key [HashBytes]byte

// Digest is a node or root commitment.
type Digest [HashBytes]byte

// Domain tags mixed into the hash input, one per node kind.
const (
	tagEmpty  = 0x00
	tagLeaf   = 0x01
	tagBranch = 0x02
)

// handle addresses a node slot: block index in the high 32 bits, slot
// index in the low 32. Valid only while the slot is live; freeing a slot
// invalidates every copy of its handle.
type handle uint64

const noHandle = ^handle(0)

func makeHandle(block, slot uint32) handle {
	return handle(uint64(block)<<32 | uint64(slot))
}

func (h handle) block() uint32 { return uint32(h >> 32) }
func (h handle) slot() uint32  { return uint32(h) }

type nodeKind uint8

const (
	kindVacant nodeKind = 0
	kindLeaf   nodeKind = 1
	kindBranch nodeKind = 2
)

const (
	// DefaultBlockSlots is the node capacity of one arena block.
	DefaultBlockSlots = 64

	blockHeaderBytes = 4
	slotBytes        = 88
	maxBlockSlots    = 0xFFFE
	freeNone         = 0xFFFF
)

var (
	ErrBadHashSize    = errors.New("merkleset: hasher output must be 32 bytes")
	ErrBadBlockSlots  = errors.New("merkleset: block slot capacity out of range")
	ErrNotFound       = errors.New("merkleset: key not found")
	ErrArenaExhausted = errors.New("merkleset: arena block limit reached")
	ErrMalformedProof = errors.New("merkleset: malformed proof")

	ErrVerifyInclusionFailed = errors.New("merkleset: verify inclusion failed")
	ErrVerifyExclusionFailed = errors.New("merkleset: verify exclusion failed")
)
