// Package selinux disables SELinux persistently so the product setup can
// succeed after a reboot. Disabled means fully off at the policy level, not
// merely permissive; some kernels additionally require a boot argument.
package selinux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/vasup/runner"
	"github.com/projecteru2/vasup/utils"
)

// Policy states accepted in the SELinux config file.
const (
	StateEnforcing  = "enforcing"
	StatePermissive = "permissive"
	StateDisabled   = "disabled"
)

// ErrGrubbyMissing signals that the boot-loader tool is unavailable and the
// kernel argument must be added manually.
var ErrGrubbyMissing = errors.New("grubby not found, add selinux=0 to the kernel arguments manually")

var modeLine = regexp.MustCompile(`(?m)^\s*SELINUX\s*=.*$`)

// Disabler applies the persistent disable: the policy config file mode and
// a boot-time kernel argument on every installed kernel entry.
type Disabler struct {
	// ConfigPath is the SELinux sysconfig file, normally /etc/selinux/config.
	ConfigPath string
	// Grubby is the boot-loader configuration binary.
	Grubby string
	// Exec runs grubby so its output lands in the install transcript.
	Exec runner.Executor
}

// Disable performs both legs best-effort: a failure in one does not block
// the other. The returned error joins any leg failures so the caller can
// log them; the caller decides whether to proceed to reboot regardless.
func (d *Disabler) Disable(ctx context.Context) error {
	logger := log.WithFunc("selinux.Disable")

	var errs []error
	if err := d.disableConfig(); err != nil {
		errs = append(errs, fmt.Errorf("rewrite %s: %w", d.ConfigPath, err))
	} else {
		logger.Infof(ctx, "set SELINUX=%s in %s", StateDisabled, d.ConfigPath)
	}

	if err := d.disableBoot(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// disableConfig rewrites the SELINUX= mode to disabled, preserving the rest
// of the file. A missing file is created holding just the mode line.
func (d *Disabler) disableConfig() error {
	data, err := os.ReadFile(d.ConfigPath) //nolint:gosec // fixed system path from config
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	content := string(data)
	replacement := "SELINUX=" + StateDisabled
	switch {
	case modeLine.MatchString(content):
		content = modeLine.ReplaceAllString(content, replacement)
	case content == "":
		content = replacement + "\n"
	default:
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += replacement + "\n"
	}
	return utils.AtomicWriteFile(d.ConfigPath, []byte(content), 0o644)
}

// disableBoot appends selinux=0 to every installed kernel's boot entry.
func (d *Disabler) disableBoot(ctx context.Context) error {
	if !runner.LookPath(d.Grubby) {
		return ErrGrubbyMissing
	}
	code, err := d.Exec.Run(ctx, "disable SELinux at boot", d.Grubby, "--update-kernel=ALL", "--args=selinux=0")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%s exited with status %d", d.Grubby, code)
	}
	return nil
}
