// Package types holds the plain data types shared across the join engine:
// tuples, relations, sub-relations, radix configuration and block metadata.
package types

// Tuple is a single (key, payload) pair, 8 bytes total, matching the C
// `tuple_t` this engine is modeled on.
type Tuple struct {
	Key     uint32
	Payload uint32
}
