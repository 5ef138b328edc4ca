// Package store persists the registry's claim table and its monotonic
// next-id counter.
//
// The Store interface is the registry's only view of persisted claim
// state. Implementations must keep both the claim records and the id
// counter across calls for the lifetime of the deployment; ids are never
// reused, even after a claim becomes inert.
//
//   - MemStore keeps everything in memory (tests, embedded use, and the
//     target of a journal replay).
//   - SQLStore keeps claims in a sqlite database via database/sql and
//     the pure-Go modernc.org/sqlite driver, for durable deployments.
//
// Stores return defensive copies: mutating a returned claim has no
// effect until it is Put back.
package store
