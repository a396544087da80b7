package ports

import "errors"

// ErrConcurrentModification is returned by OrderRepository.Update when the
// stored version no longer matches the aggregate, i.e. another transaction
// committed a change first.
var ErrConcurrentModification = errors.New("order was modified concurrently")
