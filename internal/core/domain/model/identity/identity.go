package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

// MinSecretLength is the shortest shared secret accepted at provisioning.
const MinSecretLength = 16

var (
	ErrIdentityIsNotConstructed = errors.New("Identity must be created via NewIdentity constructor")
	ErrKeyIDIsRequired          = errs.NewValueIsRequiredError("key id")
	ErrSecretIsRequired         = errs.NewValueIsRequiredError("secret")
)

// Identity is a registered API credential.
//
// Invariants:
//   - keyID and secret are non-empty
//   - ipAllowlist holds canonical literal IPs, de-duplicated, in insertion order
//   - only Deactivate mutates an identity after construction
type Identity struct {
	id          kernel.UUID
	keyID       string
	secret      string
	active      bool
	ipAllowlist []string
	createdAt   time.Time

	guard guard.ConstructorGuard
}

// NewIdentity provisions an active identity.
func NewIdentity(id kernel.UUID, keyID, secret string, ipAllowlist []string, createdAt time.Time) (*Identity, error) {
	identity := &Identity{
		active:    true,
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		identity.setID(id),
		identity.setKeyID(keyID),
		identity.setSecret(secret),
		identity.setIPAllowlist(ipAllowlist),
	); err != nil {
		return nil, err
	}

	return identity, nil
}

// RestoreIdentity rebuilds a persisted identity. Stored secrets shorter than
// MinSecretLength are accepted so older records keep working.
func RestoreIdentity(
	id kernel.UUID,
	keyID, secret string,
	active bool,
	ipAllowlist []string,
	createdAt time.Time,
) (*Identity, error) {
	identity := &Identity{
		active:    active,
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretIsRequired
	}
	identity.secret = secret

	if err := errors.Join(
		identity.setID(id),
		identity.setKeyID(keyID),
		identity.setIPAllowlist(ipAllowlist),
	); err != nil {
		return nil, err
	}

	return identity, nil
}

func (i *Identity) Validate() error {
	if i == nil {
		return ErrIdentityIsNotConstructed
	}
	return i.guard.Validate(ErrIdentityIsNotConstructed)
}

func (i *Identity) ID() kernel.UUID      { return i.id }
func (i *Identity) KeyID() string        { return i.keyID }
func (i *Identity) IsActive() bool       { return i.active }
func (i *Identity) CreatedAt() time.Time { return i.createdAt }

// Secret exposes the shared secret to persistence adapters only.
func (i *Identity) Secret() string { return i.secret }

// IPAllowlist returns a copy of the allowlist; empty means any address.
func (i *Identity) IPAllowlist() []string {
	list := make([]string, len(i.ipAllowlist))
	copy(list, i.ipAllowlist)
	return list
}

// Deactivate disables the identity. Deactivating twice is a no-op.
func (i *Identity) Deactivate() {
	i.active = false
}

// AllowsIP reports whether ip may use this identity. The comparison is
// verbatim against the stored literals.
func (i *Identity) AllowsIP(ip string) bool {
	if len(i.ipAllowlist) == 0 {
		return true
	}
	for _, allowed := range i.ipAllowlist {
		if allowed == ip {
			return true
		}
	}
	return false
}

// Sign returns base64(HMAC-SHA256(secret, stringToSign)).
func (i *Identity) Sign(stringToSign string) string {
	return Sign(i.secret, stringToSign)
}

// VerifySignature compares signature with the expected one in constant time.
func (i *Identity) VerifySignature(stringToSign, signature string) bool {
	expected := i.Sign(stringToSign)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes a request signature for secret. It is shared by the client
// side helpers and the server side verification.
func Sign(secret, stringToSign string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (i *Identity) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Identity) setKeyID(keyID string) error {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return ErrKeyIDIsRequired
	}
	i.keyID = keyID
	return nil
}

func (i *Identity) setSecret(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrSecretIsRequired
	}
	if len(secret) < MinSecretLength {
		return errs.NewValueIsOutOfRangeError("secret length", len(secret), MinSecretLength, "unbounded")
	}
	i.secret = secret
	return nil
}

func (i *Identity) setIPAllowlist(ips []string) error {
	seen := make(map[string]struct{}, len(ips))
	list := make([]string, 0, len(ips))

	var validationErrs []error
	for _, raw := range ips {
		addr, err := netip.ParseAddr(strings.TrimSpace(raw))
		if err != nil {
			validationErrs = append(validationErrs,
				errs.NewValueIsInvalidErrorWithCause("ip allowlist", fmt.Errorf("%q is not a literal IP", raw)))
			continue
		}
		canonical := addr.String()
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		list = append(list, canonical)
	}
	if err := errors.Join(validationErrs...); err != nil {
		return err
	}

	i.ipAllowlist = list
	return nil
}
