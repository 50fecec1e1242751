// Package kv stores JSON values in named slots on top of a store.SlotStore.
//
// The "media" key is special: every Save also writes "media_backup", a read
// of a missing "media" slot restores it from the backup, and Remove("media")
// leaves the backup in place.
//
// Storage and serialization failures are logged and reported as a false
// return, so "not found" may also mean "storage failed".
package kv
