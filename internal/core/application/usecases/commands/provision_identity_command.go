package commands

import (
	"errors"
	"strings"

	"orderhub/internal/pkg/guard"
)

var ErrProvisionIdentityCommandIsNotConstructed = errors.New(
	"ProvisionIdentityCommand must be created via NewProvisionIdentityCommand constructor",
)

// ProvisionIdentityCommand registers API credentials. Empty keyID and secret
// are generated.
type ProvisionIdentityCommand struct {
	keyID       string
	secret      string
	ipAllowlist []string

	guard guard.ConstructorGuard
}

func NewProvisionIdentityCommand(keyID, secret string, ipAllowlist []string) ProvisionIdentityCommand {
	list := make([]string, 0, len(ipAllowlist))
	for _, ip := range ipAllowlist {
		if ip = strings.TrimSpace(ip); ip != "" {
			list = append(list, ip)
		}
	}
	return ProvisionIdentityCommand{
		keyID:       strings.TrimSpace(keyID),
		secret:      secret,
		ipAllowlist: list,
		guard:       guard.NewConstructorGuard(),
	}
}

func (c ProvisionIdentityCommand) Validate() error {
	return c.guard.Validate(ErrProvisionIdentityCommandIsNotConstructed)
}

func (c ProvisionIdentityCommand) KeyID() string  { return c.keyID }
func (c ProvisionIdentityCommand) Secret() string { return c.secret }

func (c ProvisionIdentityCommand) IPAllowlist() []string {
	list := make([]string, len(c.ipAllowlist))
	copy(list, c.ipAllowlist)
	return list
}
