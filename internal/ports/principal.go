package ports

// Principal reports the identity the process is running as.
// Provisioning mutates host-level state, so the runner refuses to start
// unless the principal is privileged.
type Principal interface {
	// Privileged returns true if the process can mutate host state.
	Privileged() bool

	// Name returns the principal's login name, best effort.
	Name() string
}
