package index

import "fmt"

// Sentinel marks a result slot that does not reference a stored row. It is
// returned when k exceeds the number of indexed vectors; callers must filter it.
const Sentinel int64 = -1

// Kind names an index implementation. It is persisted in the index file.
type Kind string

const (
	KindFlat   Kind = "flat"
	KindVPTree Kind = "vptree"
)

// ParseKind validates a configured index kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFlat, KindVPTree:
		return k, nil
	case "":
		return KindFlat, nil
	default:
		return "", fmt.Errorf("index: unknown kind %q", s)
	}
}

// Index defines an immutable L2 nearest-neighbour index over positional rows.
// Row i is the i-th vector passed to Build; there is no insert, update or
// delete, only a full rebuild. Implementations are safe for concurrent
// Search calls once built.
type Index interface {
	// Kind reports the implementation stored in the index file header.
	Kind() Kind

	// Build constructs the index from vectors; all vectors must share one
	// dimension.
	Build(vectors [][]float32) error

	// Search returns exactly k slots ordered by ascending Euclidean distance.
	// Slots beyond the stored count carry row Sentinel and distance +Inf.
	// Equal distances are ordered by ascending row.
	Search(query []float32, k int) (distances []float32, rows []int64, err error)

	// Len returns the number of indexed rows.
	Len() int

	// Dimension returns the vector dimension, or 0 when empty.
	Dimension() int

	// Vector returns the stored vector for row, or nil when out of range.
	// The returned slice must not be modified.
	Vector(row int64) []float32

	// MarshalBinary serializes the indexed vectors.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from MarshalBinary output.
	UnmarshalBinary(data []byte) error
}
