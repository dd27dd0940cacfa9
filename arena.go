package merkleset

import "encoding/binary"

// arena owns every live node. Nodes are grouped into fixed-capacity
// blocks so that the nodes touched by one descent land in few distinct
// memory regions; a handle (block index + slot index) substitutes for a
// pointer.
//
// Block slab layout:
//
//	freeHead 2 | liveCount 2 | slot[slotsPerBlock]
//
// Vacant slots are threaded into an intrusive free list through their
// freeNext field, freeHead holding the list head and freeNone
// terminating it. A block whose liveCount returns to zero goes back to
// the free-block pool and is recycled before the arena grows.
type arena struct {
	slotsPerBlock uint32
	maxBlocks     uint32 // 0 means unbounded
	blocks        [][]byte
	freeBlocks    []uint32
	active        uint32
}

const noBlock = ^uint32(0)

func newArena(slotsPerBlock, maxBlocks uint32) *arena {
	return &arena{
		slotsPerBlock: slotsPerBlock,
		maxBlocks:     maxBlocks,
		active:        noBlock,
	}
}

// rec returns the slot record addressed by h. The handle must be live;
// the arena does not revalidate it.
func (a *arena) rec(h handle) []byte {
	off := blockHeaderBytes + h.slot()*slotBytes
	return a.blocks[h.block()][off : off+slotBytes]
}

// alloc reserves a vacant slot and returns its handle. Placement prefers
// the block holding hint (typically the parent or sibling being
// restructured), then the most recently used block, then the free-block
// pool, and grows only as a last resort.
func (a *arena) alloc(hint handle) (handle, error) {
	if hint != noHandle {
		if h, ok := a.allocFrom(hint.block()); ok {
			return h, nil
		}
	}
	if a.active != noBlock {
		if h, ok := a.allocFrom(a.active); ok {
			return h, nil
		}
	}
	for len(a.freeBlocks) > 0 {
		b := a.freeBlocks[len(a.freeBlocks)-1]
		a.freeBlocks = a.freeBlocks[:len(a.freeBlocks)-1]
		// Pool entries go stale when a block is refilled through a
		// locality hint before it is popped.
		if a.blockLive(b) != 0 {
			continue
		}
		a.active = b
		h, _ := a.allocFrom(b)
		return h, nil
	}
	if a.maxBlocks != 0 && uint32(len(a.blocks)) >= a.maxBlocks {
		// Last resort at the cap: any block with a vacant slot will do.
		for b := uint32(0); b < uint32(len(a.blocks)); b++ {
			if h, ok := a.allocFrom(b); ok {
				a.active = b
				return h, nil
			}
		}
		return noHandle, ErrArenaExhausted
	}
	a.blocks = append(a.blocks, a.newBlock())
	a.active = uint32(len(a.blocks) - 1)
	h, _ := a.allocFrom(a.active)
	return h, nil
}

// free vacates the slot addressed by h immediately; no tombstones are
// left behind, so refilled blocks stay dense.
func (a *arena) free(h handle) {
	slab := a.blocks[h.block()]
	off := blockHeaderBytes + h.slot()*slotBytes
	rec := slab[off : off+slotBytes]
	clear(rec)
	binary.BigEndian.PutUint16(rec[slotFreeOff:], binary.BigEndian.Uint16(slab[0:2]))
	binary.BigEndian.PutUint16(slab[0:2], uint16(h.slot()))

	live := binary.BigEndian.Uint16(slab[2:4]) - 1
	binary.BigEndian.PutUint16(slab[2:4], live)
	if live == 0 {
		a.freeBlocks = append(a.freeBlocks, h.block())
	}
}

func (a *arena) allocFrom(b uint32) (handle, bool) {
	slab := a.blocks[b]
	head := binary.BigEndian.Uint16(slab[0:2])
	if head == freeNone {
		return noHandle, false
	}
	off := blockHeaderBytes + uint32(head)*slotBytes
	rec := slab[off : off+slotBytes]
	binary.BigEndian.PutUint16(slab[0:2], binary.BigEndian.Uint16(rec[slotFreeOff:]))
	binary.BigEndian.PutUint16(slab[2:4], binary.BigEndian.Uint16(slab[2:4])+1)
	clear(rec)
	return makeHandle(b, uint32(head)), true
}

func (a *arena) newBlock() []byte {
	slab := make([]byte, blockHeaderBytes+a.slotsPerBlock*slotBytes)
	for i := uint32(0); i < a.slotsPerBlock; i++ {
		next := uint16(freeNone)
		if i != a.slotsPerBlock-1 {
			next = uint16(i + 1)
		}
		off := blockHeaderBytes + i*slotBytes
		binary.BigEndian.PutUint16(slab[off+slotFreeOff:], next)
	}
	binary.BigEndian.PutUint16(slab[0:2], 0)
	binary.BigEndian.PutUint16(slab[2:4], 0)
	return slab
}

func (a *arena) blockLive(b uint32) uint16 {
	return binary.BigEndian.Uint16(a.blocks[b][2:4])
}

// liveNodes returns the total live slot count across all blocks.
func (a *arena) liveNodes() uint64 {
	var n uint64
	for b := range a.blocks {
		n += uint64(a.blockLive(uint32(b)))
	}
	return n
}
