// Package kernel holds the value objects shared by every aggregate of the
// order service: identifiers, monetary amounts and the actor that a mutation
// is attributed to.
//
// All kernel types are immutable values and safe for concurrent use.
package kernel
