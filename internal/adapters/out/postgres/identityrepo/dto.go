// Package identityrepo stores API identities. The IP allowlist is a Postgres
// text array.
package identityrepo

import (
	"time"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type IdentityDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	KeyID       string         `gorm:"size:64;not null;uniqueIndex"`
	Secret      string         `gorm:"size:255;not null"`
	Active      bool           `gorm:"not null;index"`
	IPAllowlist pq.StringArray `gorm:"type:text[]"`
	CreatedAt   time.Time      `gorm:"not null"`
}

func (IdentityDTO) TableName() string {
	return "api_identities"
}

func fromDomain(aggregate *identity.Identity) IdentityDTO {
	return IdentityDTO{
		ID:          aggregate.ID().Bytes(),
		KeyID:       aggregate.KeyID(),
		Secret:      aggregate.Secret(),
		Active:      aggregate.IsActive(),
		IPAllowlist: pq.StringArray(aggregate.IPAllowlist()),
		CreatedAt:   aggregate.CreatedAt(),
	}
}

func toDomain(dto IdentityDTO) (*identity.Identity, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return identity.RestoreIdentity(id, dto.KeyID, dto.Secret, dto.Active, []string(dto.IPAllowlist), dto.CreatedAt)
}
