package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/projecteru2/vasup/config"
	"github.com/projecteru2/vasup/runner"
)

// SystemReboot restarts the host through the configured reboot command.
// The current process does not survive it.
type SystemReboot struct {
	Conf *config.Config
	Exec runner.Executor
}

func (s *SystemReboot) Reboot(ctx context.Context) error {
	argv := s.Conf.Setup.RebootCommand
	if len(argv) == 0 {
		return errors.New("reboot command not configured")
	}
	code, err := s.Exec.Run(ctx, "reboot host", argv[0], argv[1:]...)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("reboot exited with status %d", code)
	}
	return nil
}
