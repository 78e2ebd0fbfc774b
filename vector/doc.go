// Package vector holds the embedding primitives shared by the index, the
// metadata store and the recommender:
//   - little-endian float32 BLOB encoding used in the SQLite store
//   - Euclidean (L2) distance, the only metric the catalog index uses
package vector
