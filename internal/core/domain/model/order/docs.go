// Package order provides the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root holding client, addresses, payment, carrier and line items
//   - Status: the closed set of lifecycle states and the transition table between them
//   - TransitionError: the caller-visible rejection of a status change
//
// Key business rules:
//   - Orders are created in the new status
//   - Status changes only through Order.TransitionTo, which enforces the transition table
//   - completed and cancelled are terminal
//   - Business guards (payment present, label generated, ...) live in the domain
//     services package because some of them need repository reads
package order
