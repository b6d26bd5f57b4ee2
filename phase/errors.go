package phase

import (
	"errors"
	"fmt"
)

// ErrRemediationDeclined is returned when the operator refuses the SELinux
// disable + reboot. The installation cannot proceed; maps to exit code 1.
var ErrRemediationDeclined = errors.New("SELinux must be disabled for setup to succeed; remediation declined by operator")

// ExitCodeError carries a failed command's exit code to the process exit so
// unclassified setup failures propagate their original status.
type ExitCodeError struct {
	Op   string
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Op, e.Code)
}
