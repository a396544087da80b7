package queries

import (
	"errors"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/guard"
)

var ErrGetAvailableTransitionsQueryIsNotConstructed = errors.New(
	"GetAvailableTransitionsQuery must be created via NewGetAvailableTransitionsQuery constructor",
)

// GetAvailableTransitionsQuery lists where an order may move next and whether
// each move would pass its guard right now.
type GetAvailableTransitionsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAvailableTransitionsQuery(orderID kernel.UUID) (GetAvailableTransitionsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetAvailableTransitionsQuery{}, err
	}
	return GetAvailableTransitionsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAvailableTransitionsQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableTransitionsQueryIsNotConstructed)
}

func (q GetAvailableTransitionsQuery) OrderID() kernel.UUID { return q.orderID }

// GetAvailableTransitionsQueryResponse describes the current status and every
// allowed target. Reason explains a target whose guard currently fails.
type GetAvailableTransitionsQueryResponse struct {
	OrderID       kernel.UUID
	CurrentStatus order.Status
	Transitions   []AvailableTransition
}

type AvailableTransition struct {
	Target        order.Status
	CanTransition bool
	Reason        string
}
