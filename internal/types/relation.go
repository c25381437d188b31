package types

// RelationID identifies which of the two joined relations a (sub-)relation
// belongs to.
type RelationID byte

const (
	RelationR RelationID = 'R'
	RelationS RelationID = 'S'
)

// Relation is one of the two joined in-memory relations. Tuples is the
// full backing array; generate.Split hands each worker a SubRelation whose
// Tuples aliases a contiguous range of it. There is no per-worker NUMA
// localization: no worker gets a private copy, and Relation.Tuples keeps
// every tuple.
type Relation struct {
	ID     RelationID
	Tuples []Tuple
	Size   uint32
	Seed   uint32
	Skew   float64 // 0.0 = uniform; >0 selects a Zipfian distribution (S only)
}

// SubRelation is a worker's exclusive share of a Relation: an offset into
// the parent and a Tuples slice aliasing the parent's storage at that
// offset.
type SubRelation struct {
	ID     RelationID
	Offset uint32
	Size   uint32
	Tuples []Tuple
}
