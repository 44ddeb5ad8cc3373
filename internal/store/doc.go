// Package store provides the immutable in-memory concept table.
//
// Concepts are held in a dense arena with an identifier-to-index map.
// Hierarchy and lexical indexes address concepts by arena index (int32)
// rather than by pointer, which keeps traversal cheap and cycle-safe.
//
// The store is constructed once through a Builder during engine
// initialization and is thereafter safe for concurrent reads by any
// number of goroutines without locking.
package store
