package queries

import (
	"errors"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrGetActorActivityQueryIsNotConstructed = errors.New(
	"GetActorActivityQuery must be created via NewGetActorActivityQuery constructor",
)

// GetActorActivityQuery returns every audit entry attributed to one actor.
type GetActorActivityQuery struct {
	actor kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetActorActivityQuery(actor kernel.Actor) (GetActorActivityQuery, error) {
	if !actor.IsValid() {
		return GetActorActivityQuery{}, errs.NewValueIsInvalidError("actor")
	}
	return GetActorActivityQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActorActivityQuery) Validate() error {
	return q.guard.Validate(ErrGetActorActivityQueryIsNotConstructed)
}

func (q GetActorActivityQuery) Actor() kernel.Actor { return q.actor }
