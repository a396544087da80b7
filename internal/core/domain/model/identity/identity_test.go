package identity_test

import (
	"testing"
	"time"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var provisionedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestNewIdentity(t *testing.T) {
	t.Run("should create active identity", func(t *testing.T) {
		id := kernel.NewUUID()

		i, err := identity.NewIdentity(id, " ak_test ", testSecret, nil, provisionedAt)

		require.NoError(t, err)
		require.NoError(t, i.Validate())
		assert.True(t, i.ID().IsEqual(id))
		assert.Equal(t, "ak_test", i.KeyID())
		assert.Equal(t, testSecret, i.Secret())
		assert.True(t, i.IsActive())
		assert.Empty(t, i.IPAllowlist())
		assert.Equal(t, provisionedAt, i.CreatedAt())
	})

	t.Run("should normalize and de-duplicate the allowlist", func(t *testing.T) {
		i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret,
			[]string{"10.0.0.1", " 10.0.0.1", "2001:DB8::1", "192.168.1.7"}, provisionedAt)

		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1", "2001:db8::1", "192.168.1.7"}, i.IPAllowlist())
	})

	t.Run("should reject CIDR and host names", func(t *testing.T) {
		_, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret,
			[]string{"10.0.0.0/8", "localhost"}, provisionedAt)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), `"10.0.0.0/8" is not a literal IP`)
		assert.Contains(t, err.Error(), `"localhost" is not a literal IP`)
	})

	t.Run("should join missing fields", func(t *testing.T) {
		_, err := identity.NewIdentity(kernel.UUID{}, "", "", nil, provisionedAt)

		require.Error(t, err)
		assert.ErrorIs(t, err, identity.ErrKeyIDIsRequired)
		assert.ErrorIs(t, err, identity.ErrSecretIsRequired)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should reject short secrets", func(t *testing.T) {
		_, err := identity.NewIdentity(kernel.NewUUID(), "ak", "short", nil, provisionedAt)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestRestoreIdentity(t *testing.T) {
	i, err := identity.RestoreIdentity(kernel.NewUUID(), "ak", "legacy", false, []string{"127.0.0.1"}, provisionedAt)

	require.NoError(t, err)
	assert.False(t, i.IsActive())
	assert.Equal(t, "legacy", i.Secret())

	_, err = identity.RestoreIdentity(kernel.NewUUID(), "ak", "", true, nil, provisionedAt)
	require.ErrorIs(t, err, identity.ErrSecretIsRequired)
}

func TestIdentity_Validate(t *testing.T) {
	var nilIdentity *identity.Identity
	require.ErrorIs(t, nilIdentity.Validate(), identity.ErrIdentityIsNotConstructed)
	require.ErrorIs(t, (&identity.Identity{}).Validate(), identity.ErrIdentityIsNotConstructed)
}

func TestIdentity_Deactivate(t *testing.T) {
	i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret, nil, provisionedAt)
	require.NoError(t, err)

	i.Deactivate()
	i.Deactivate()

	assert.False(t, i.IsActive())
}

func TestIdentity_AllowsIP(t *testing.T) {
	t.Run("empty allowlist allows any address", func(t *testing.T) {
		i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret, nil, provisionedAt)
		require.NoError(t, err)

		assert.True(t, i.AllowsIP("203.0.113.9"))
		assert.True(t, i.AllowsIP(""))
	})

	t.Run("non-empty allowlist matches verbatim", func(t *testing.T) {
		i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret, []string{"10.0.0.1"}, provisionedAt)
		require.NoError(t, err)

		assert.True(t, i.AllowsIP("10.0.0.1"))
		assert.False(t, i.AllowsIP("10.0.0.2"))
		assert.False(t, i.AllowsIP("10.0.0.1:443"))
	})

	t.Run("returned allowlist is a copy", func(t *testing.T) {
		i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret, []string{"10.0.0.1"}, provisionedAt)
		require.NoError(t, err)

		list := i.IPAllowlist()
		list[0] = "10.9.9.9"

		assert.False(t, i.AllowsIP("10.9.9.9"))
	})
}

func TestIdentity_Sign(t *testing.T) {
	i, err := identity.NewIdentity(kernel.NewUUID(), "ak", testSecret, nil, provisionedAt)
	require.NoError(t, err)

	signature := i.Sign("GET\n/api/v1/orders\n1700000000\nSHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=")

	assert.Equal(t, identity.Sign(testSecret,
		"GET\n/api/v1/orders\n1700000000\nSHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="), signature)
	assert.Len(t, signature, 44)
	assert.True(t, i.VerifySignature("GET\n/api/v1/orders\n1700000000\nSHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", signature))
	assert.False(t, i.VerifySignature("GET\n/api/v1/orders\n1700000001\nSHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", signature))
	assert.NotEqual(t, identity.Sign("another-secret-value", "x"), identity.Sign(testSecret, "x"))
}

func TestGenerateCredentials(t *testing.T) {
	keyID, secret, err := identity.GenerateCredentials()
	require.NoError(t, err)

	assert.Regexp(t, `^ak_[0-9a-f]{24}$`, keyID)
	assert.GreaterOrEqual(t, len(secret), identity.MinSecretLength)

	otherKey, otherSecret, err := identity.GenerateCredentials()
	require.NoError(t, err)
	assert.NotEqual(t, keyID, otherKey)
	assert.NotEqual(t, secret, otherSecret)

	_, err = identity.NewIdentity(kernel.NewUUID(), keyID, secret, nil, provisionedAt)
	require.NoError(t, err)
}
