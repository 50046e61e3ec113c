// Package principal reports the identity the process runs as.
package principal

import (
	"os"
	"os/user"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// UnixPrincipal implements ports.Principal from the effective UID.
type UnixPrincipal struct{}

// NewUnixPrincipal creates a new UnixPrincipal.
func NewUnixPrincipal() *UnixPrincipal {
	return &UnixPrincipal{}
}

// Privileged returns true when running as root.
func (p *UnixPrincipal) Privileged() bool {
	return os.Geteuid() == 0
}

// Name returns the current user's login name, best effort.
func (p *UnixPrincipal) Name() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}

// Ensure UnixPrincipal implements ports.Principal.
var _ ports.Principal = (*UnixPrincipal)(nil)
