// Package store implements the persistent collection store.
//
// Collections (phone numbers, gallery images) are ordered JSON sequences
// stored under stable keys. The Store interface is byte-oriented; the
// generic LoadCollection/SaveCollection helpers add JSON encoding and the
// default-fallback recovery the editor relies on: a missing or corrupt key
// never reaches the operator, the built-in seed data is used instead.
//
// Backends: MemoryStore (ephemeral), FileStore (one JSON file per key,
// the default), S3Store (aws-sdk-go-v2, for diskless hosts).
package store
