// Package guard provides ConstructorGuard, a marker embedded in commands,
// queries and value objects to reject zero-value instances that bypassed
// their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard remembers whether its owner was built by a constructor.
//
// Example:
//
//	var ErrQueryIsNotConstructed = errors.New("Query must be created via NewQuery")
//
//	type Query struct {
//	    orderID kernel.UUID
//	    guard   guard.ConstructorGuard
//	}
//
//	func NewQuery(orderID kernel.UUID) Query {
//	    return Query{orderID: orderID, guard: guard.NewConstructorGuard()}
//	}
//
//	func (q Query) Validate() error {
//	    return q.guard.Validate(ErrQueryIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its owner as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the owner was not created via its constructor.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
