// Package steps wraps the external collaborators of the installation: the
// OS package manager, the third-party repository script, the product setup
// command, and the feed sync tool.
package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/projecteru2/core/log"
	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/vasup/config"
	"github.com/projecteru2/vasup/prompt"
	"github.com/projecteru2/vasup/runner"
)

// ErrAborted is returned when the operator declines a step the installation
// cannot continue without. It maps to a benign zero exit.
var ErrAborted = errors.New("installation aborted by operator")

// feedSyncParallel bounds concurrent feed-type syncs; the feed server
// throttles aggressive clients.
const feedSyncParallel = 2

// Runner executes the phase work through the shared command executor so
// every collaborator's output lands in the one transcript the classifier
// scans.
type Runner struct {
	Conf    *config.Config
	Exec    runner.Executor
	Confirm prompt.Confirmer
}

// BaseInstall performs the start-phase work: prerequisite packages, an
// optional confirmed system update, the third-party repository, and the
// product package itself.
func (r *Runner) BaseInstall(ctx context.Context) error {
	logger := log.WithFunc("steps.BaseInstall")

	code, err := r.Exec.Run(ctx, "install prerequisite packages",
		"dnf", "-y", "install", "wget", "bzip2", "net-tools")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("prerequisite install exited with status %d", code)
	}

	if r.Confirm.Confirm("Run a full system update first (recommended)?") {
		if code, err := r.Exec.Run(ctx, "system update", "dnf", "-y", "update"); err != nil || code != 0 {
			logger.Warnf(ctx, "system update did not complete cleanly (status %d, err %v), continuing", code, err)
		}
	}

	if !r.Confirm.Confirm("Enable the Atomicorp repository (required for OpenVAS)?") {
		return ErrAborted
	}
	script := fmt.Sprintf("wget -q -O - %s | bash", r.Conf.Setup.RepoScriptURL)
	if code, err := r.Exec.Run(ctx, "enable atomicorp repository", "bash", "-c", script); err != nil || code != 0 {
		logger.Warnf(ctx, "repository script did not complete cleanly (status %d, err %v), continuing", code, err)
	}

	code, err = r.Exec.Run(ctx, "install openvas", "dnf", "-y", "install", "openvas")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("openvas install exited with status %d", code)
	}
	return nil
}

// Setup runs the product's initial setup command and reports its exit code.
// The command is interactive and trusted to prompt for its own terms.
func (r *Runner) Setup(ctx context.Context) (int, error) {
	argv := r.Conf.Setup.SetupCommand
	if len(argv) == 0 {
		return 0, errors.New("setup command not configured")
	}
	return r.Exec.Run(ctx, "openvas initial setup", argv[0], argv[1:]...)
}

// FeedSync refreshes vulnerability feeds. Best-effort throughout: a missing
// tool or a failed sync is logged and never blocks completion.
func (r *Runner) FeedSync(ctx context.Context) {
	logger := log.WithFunc("steps.FeedSync")
	bin := r.Conf.Setup.FeedSyncBinary

	if bin == "" || !runner.LookPath(bin) {
		logger.Infof(ctx, "feed sync tool %q not found, skipping", bin)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedSyncParallel)
	for _, feedType := range r.Conf.Setup.FeedTypes {
		feedType := feedType
		g.Go(func() error {
			desc := "sync feed " + feedType
			if code, err := r.Exec.Run(gctx, desc, bin, "--type", feedType); err != nil || code != 0 {
				logger.Warnf(gctx, "%s did not complete cleanly (status %d, err %v)", desc, code, err)
			}
			return nil
		})
	}
	_ = g.Wait() // sync errors already logged per feed
}
