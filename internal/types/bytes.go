package types

import "fmt"

// Bytes is a byte count with human-readable formatting, used by the
// console banner to describe LLC capacities and the in-memory footprint
// of the two relations.
type Bytes uint64

const tupleSize = 8 // sizeof(Tuple): two uint32 fields

// TupleBytes returns the in-memory footprint of n tuples.
func TupleBytes(n uint32) Bytes { return Bytes(n) * tupleSize }

// Humanized renders b under the largest 1024-based unit it fills, from
// plain bytes up to terabytes.
func (b Bytes) Humanized() string {
	if b < 1<<10 {
		return fmt.Sprintf("%d B", b)
	}
	units := [...]string{"KB", "MB", "GB", "TB"}
	v := float64(b) / 1024
	u := 0
	for v >= 1024 && u < len(units)-1 {
		v /= 1024
		u++
	}
	return fmt.Sprintf("%.2f %s", v, units[u])
}

// KB reports b in KiB.
func (b Bytes) KB() float64 { return float64(b) / (1 << 10) }

// MB reports b in MiB.
func (b Bytes) MB() float64 { return float64(b) / (1 << 20) }

// GB reports b in GiB.
func (b Bytes) GB() float64 { return float64(b) / (1 << 30) }
