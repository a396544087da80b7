package commands

import "context"

type DeactivateIdentityCommandHandler struct {
	uowFactory IdentityUoWFactory
}

func NewDeactivateIdentityCommandHandler(uowFactory IdentityUoWFactory) DeactivateIdentityCommandHandler {
	return DeactivateIdentityCommandHandler{uowFactory: uowFactory}
}

// Handle deactivates the identity. Deactivating an inactive identity succeeds.
func (h DeactivateIdentityCommandHandler) Handle(ctx context.Context, cmd DeactivateIdentityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.IdentityRepository()

	found, err := repo.GetByKeyID(ctx, cmd.KeyID())
	if err != nil {
		return err
	}

	found.Deactivate()
	if err = repo.Update(ctx, found); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
