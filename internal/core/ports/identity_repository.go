package ports

import (
	"context"

	"orderhub/internal/core/domain/model/identity"
)

// IdentityRepository is the credential store.
type IdentityRepository interface {
	// FindActiveByKeyID returns the active identity for keyID, or
	// errs.ObjectNotFoundError when none exists or it was deactivated.
	FindActiveByKeyID(ctx context.Context, keyID string) (*identity.Identity, error)

	// GetByKeyID returns the identity regardless of its active flag.
	GetByKeyID(ctx context.Context, keyID string) (*identity.Identity, error)

	Add(ctx context.Context, aggregate *identity.Identity) error

	// Update persists the active flag. Nothing else about an identity changes.
	Update(ctx context.Context, aggregate *identity.Identity) error
}
