package app

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the operator declines the confirmation prompt.
var ErrAborted = errors.New("aborted by operator")

// PrincipalError indicates the process lacks the privileges required to
// provision the host. Nothing is attempted when this is returned.
type PrincipalError struct {
	Name string
}

func (e *PrincipalError) Error() string {
	return fmt.Sprintf("insufficient privileges: must run as root (current principal: %s)", e.Name)
}
