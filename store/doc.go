// Package store persists catalog metadata, embeddings and the build
// manifest in a SQLite database.
//
// Row i of the movies table (row_idx = i) corresponds to row i of the vector
// index built in the same run. Rows are always read back in row_idx order and
// a gap in row_idx is treated as corruption.
package store
