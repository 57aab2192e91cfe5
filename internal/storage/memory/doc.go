// Package memory provides the in-memory store for token records and the
// user directory.
//
// It backs tests and single-process deployments where durability is not
// required, and implements the same repository interfaces as the Badger
// store.
package memory
