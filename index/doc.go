// Package index defines a minimal abstraction for L2 vector indexes that are
// built once from the catalog embeddings, queried for kNN, and persisted to a
// single file next to the metadata store. Implementations in this module are
// a flat brute-force baseline (index/flat) and a vantage-point tree
// (index/vptree); both return exact results.
package index
