// Package audit models the append-only trail of mutations. An Entry records
// who did what to which entity together with structured before/after
// snapshots. Entries have no setters; the repository contract offers no
// update or delete.
package audit
