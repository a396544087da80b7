// Package queries contains read-only operations. Queries never write and never
// produce audit entries. Order reads use raw SQL; audit reads go through the
// append-only audit log port.
package queries
