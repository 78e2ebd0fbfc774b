// Package vptree provides an exact L2 index backed by a vantage-point tree.
// Euclidean distance is a metric, so triangle-inequality pruning never drops a
// true neighbour; results match index/flat row for row. Persistence reuses the
// flat vector encoding and the tree is rebuilt on load.
package vptree
