// Package flat provides an exact L2 vector index that answers kNN queries by
// scanning every stored vector. It is the default catalog index: a catalog of
// a few thousand movies is scanned in well under a millisecond.
package flat
