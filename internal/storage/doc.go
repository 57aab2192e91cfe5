// Package storage provides the persistent Badger-backed store for token
// records and the user directory.
//
// Records are serialized as JSON and, when a sealing passphrase is
// configured, encrypted at rest with an AEAD cipher bound to the record
// key. The in-memory alternative lives in the memory subpackage.
package storage
