package types

// Block is a half-open range of tuple indices, [Start, End), describing one
// sub-block's slice of a reordered sub-relation's tuple array after ICP.
// Build/Probe consumes and mutates Start as it advances through a partition.
type Block struct {
	Start, End uint32
}

// BlockMeta is the per-sub-relation output of ICP: Pos[b][m] is the m'th
// sub-block of the b'th block.
type BlockMeta struct {
	Pos [][]Block
}

// NumBlocks reports how many blocks ICP produced.
func (bm *BlockMeta) NumBlocks() int { return len(bm.Pos) }
