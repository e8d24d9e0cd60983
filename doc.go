// Package reportanchor is a write-once registry of report digests.
//
// A reporter analyzes some subject
// (a wallet, say)
// and writes a report about it somewhere else.
// What gets anchored here is only the report's SHA-256 digest,
// bound permanently to the identity of the reporter
// and the identity of the subject,
// together with the time of anchoring.
//
// The record for a given reporter and digest lives at an address computed from those two values
// (see the derive subpackage).
// There is no index:
// anyone holding the reporter identity and the digest can recompute the address
// and read the record back,
// which is what Registry.Verify does.
// Finding a record there is proof that the reporter anchored that digest,
// since records are created once and never changed or removed.
//
// Records live in a Store,
// an opaque key-value store whose one write operation is create-if-absent.
// Implementations are in the store subpackages:
// memory, files, SQLite, Postgresql, Redis, and Google Cloud Storage,
// plus wrappers for caching, logging, metrics, and remote access over gRPC.
//
// This package does not store reports themselves,
// and it does not check that a digest is the hash of anything in particular.
package reportanchor
