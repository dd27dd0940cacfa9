package merkleset

import "encoding/binary"

// Node slot layout, within a block slab:
//
//	kind 1 | flags 1 | freeNext 2 | pad 4 | left 8 | right 8 | key 32 | digest 32
//
// freeNext is only meaningful while the slot is vacant. key is only
// meaningful for a leaf, left/right only for a branch. An absent child is
// noHandle. digest is the cached subtree digest; for a branch it is stale
// while flagDirty is set, a leaf digest is written at creation and never
// invalidated.
const (
	slotKindOff   = 0
	slotFlagsOff  = 1
	slotFreeOff   = 2
	slotLeftOff   = 8
	slotRightOff  = 16
	slotKeyOff    = 24
	slotDigestOff = 56
)

const flagDirty = 0x01

func slotKind(rec []byte) nodeKind { return nodeKind(rec[slotKindOff]) }

func slotDirty(rec []byte) bool { return rec[slotFlagsOff]&flagDirty != 0 }

func slotSetDirty(rec []byte)   { rec[slotFlagsOff] |= flagDirty }
func slotClearDirty(rec []byte) { rec[slotFlagsOff] &^= flagDirty }

func slotLeft(rec []byte) handle {
	return handle(binary.BigEndian.Uint64(rec[slotLeftOff:]))
}

func slotRight(rec []byte) handle {
	return handle(binary.BigEndian.Uint64(rec[slotRightOff:]))
}

// slotChild returns the child selected by dir: 0 left, 1 right.
func slotChild(rec []byte, dir uint8) handle {
	if dir == 0 {
		return slotLeft(rec)
	}
	return slotRight(rec)
}

func slotSetChild(rec []byte, dir uint8, h handle) {
	if dir == 0 {
		binary.BigEndian.PutUint64(rec[slotLeftOff:], uint64(h))
		return
	}
	binary.BigEndian.PutUint64(rec[slotRightOff:], uint64(h))
}

func slotKey(rec []byte) Key {
	var k Key
	copy(k[:], rec[slotKeyOff:slotKeyOff+HashBytes])
	return k
}

func slotDigest(rec []byte) Digest {
	var d Digest
	copy(d[:], rec[slotDigestOff:slotDigestOff+HashBytes])
	return d
}

func slotSetDigest(rec []byte, d Digest) {
	copy(rec[slotDigestOff:slotDigestOff+HashBytes], d[:])
}

// slotWriteLeaf initializes rec as a leaf. The digest is final from the
// moment of creation.
func slotWriteLeaf(rec []byte, key Key, digest Digest) {
	rec[slotKindOff] = byte(kindLeaf)
	rec[slotFlagsOff] = 0
	copy(rec[slotKeyOff:slotKeyOff+HashBytes], key[:])
	slotSetDigest(rec, digest)
}

// slotWriteBranch initializes rec as a branch with a stale digest.
func slotWriteBranch(rec []byte, left, right handle) {
	rec[slotKindOff] = byte(kindBranch)
	rec[slotFlagsOff] = flagDirty
	binary.BigEndian.PutUint64(rec[slotLeftOff:], uint64(left))
	binary.BigEndian.PutUint64(rec[slotRightOff:], uint64(right))
}
