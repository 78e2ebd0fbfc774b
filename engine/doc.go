// Package engine provides helpers for working with the modernc.org/sqlite
// driver: opening connections and registering the vec_l2 SQL scalar
// function used to cross-check stored embeddings against the vector index.
// It keeps a thin surface so other packages share the same driver instance.
package engine
