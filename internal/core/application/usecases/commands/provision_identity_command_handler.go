package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
)

// ErrKeyIDAlreadyExists is returned when provisioning reuses a key id.
var ErrKeyIDAlreadyExists = errors.New("key id already exists")

// ProvisionedIdentity carries the secret back to the operator exactly once.
type ProvisionedIdentity struct {
	Identity *identity.Identity
	Secret   string
}

type ProvisionIdentityCommandHandler struct {
	uowFactory IdentityUoWFactory
	now        func() time.Time
}

func NewProvisionIdentityCommandHandler(uowFactory IdentityUoWFactory) ProvisionIdentityCommandHandler {
	return ProvisionIdentityCommandHandler{uowFactory: uowFactory, now: time.Now}
}

func (h ProvisionIdentityCommandHandler) Handle(
	ctx context.Context,
	cmd ProvisionIdentityCommand,
) (ProvisionedIdentity, error) {
	if err := cmd.Validate(); err != nil {
		return ProvisionedIdentity{}, err
	}

	keyID, secret := cmd.KeyID(), cmd.Secret()
	if keyID == "" || secret == "" {
		generatedKey, generatedSecret, err := identity.GenerateCredentials()
		if err != nil {
			return ProvisionedIdentity{}, err
		}
		if keyID == "" {
			keyID = generatedKey
		}
		if secret == "" {
			secret = generatedSecret
		}
	}

	created, err := identity.NewIdentity(kernel.NewUUID(), keyID, secret, cmd.IPAllowlist(), h.now())
	if err != nil {
		return ProvisionedIdentity{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ProvisionedIdentity{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.IdentityRepository()

	_, err = repo.GetByKeyID(ctx, keyID)
	switch {
	case err == nil:
		return ProvisionedIdentity{}, fmt.Errorf("%w: %s", ErrKeyIDAlreadyExists, keyID)
	case !errors.Is(err, errs.ErrObjectNotFound):
		return ProvisionedIdentity{}, err
	}

	if err = repo.Add(ctx, created); err != nil {
		return ProvisionedIdentity{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ProvisionedIdentity{}, err
	}

	return ProvisionedIdentity{Identity: created, Secret: secret}, nil
}
