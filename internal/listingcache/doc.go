// Package listingcache persists the last fetched drive listing so planning
// can run without another round of Drive calls.
//
// Load never fails: missing, unreadable, corrupt, version-mismatched, or
// expired snapshots all read as absent and the caller fetches fresh data.
// Reads and writes are serialized across processes with a sidecar flock.
package listingcache
