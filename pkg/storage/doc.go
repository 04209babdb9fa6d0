// Package storage defines the persistence contract used by the
// authentication layer, plus sentinel errors shared by the adapters.
//
// The two-level Store/Conn split mirrors connection-pool usage: a Store
// hands out Conns, and a failed acquisition surfaces as-is to the caller
// rather than being folded into a lookup error. Adapters live in the
// memory and postgres subpackages.
package storage
