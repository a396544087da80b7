package commands

import (
	"errors"
	"strings"

	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrDeactivateIdentityCommandIsNotConstructed = errors.New(
	"DeactivateIdentityCommand must be created via NewDeactivateIdentityCommand constructor",
)

// DeactivateIdentityCommand revokes API credentials by key id.
type DeactivateIdentityCommand struct {
	keyID string

	guard guard.ConstructorGuard
}

func NewDeactivateIdentityCommand(keyID string) (DeactivateIdentityCommand, error) {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return DeactivateIdentityCommand{}, errs.NewValueIsRequiredError("key id")
	}
	return DeactivateIdentityCommand{keyID: keyID, guard: guard.NewConstructorGuard()}, nil
}

func (c DeactivateIdentityCommand) Validate() error {
	return c.guard.Validate(ErrDeactivateIdentityCommandIsNotConstructed)
}

func (c DeactivateIdentityCommand) KeyID() string { return c.keyID }
