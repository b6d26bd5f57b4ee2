// Package phase drives the resumable installation state machine. Phases
// advance strictly forward (start → setup → feeds → done), with one
// insertion: a setup failure classified as the SELinux condition detours
// through postreboot_setup across a host reboot. The persisted record is
// the sole source of truth on relaunch; no other runtime signal is
// consulted.
package phase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projecteru2/core/log"

	"github.com/projecteru2/vasup/prompt"
	"github.com/projecteru2/vasup/state"
	"github.com/projecteru2/vasup/types"
)

// Steps is the phase-specific external work, sequential shell-outs owned by
// the steps package.
type Steps interface {
	// BaseInstall performs the start-phase package and repository work.
	BaseInstall(ctx context.Context) error
	// Setup runs the product setup command, returning its exit code.
	Setup(ctx context.Context) (int, error)
	// FeedSync refreshes feeds, best-effort.
	FeedSync(ctx context.Context)
	// Summary reports the final interface overview to the operator.
	Summary(ctx context.Context)
}

// Classifier inspects accumulated transcript text after a setup failure.
type Classifier interface {
	Classify(logText string) types.Outcome
}

// Transcript exposes the durable log: accumulated text for classification
// and header lines marking each run.
type Transcript interface {
	Contents() (string, error)
	Printf(format string, args ...any)
}

// Disabler applies the persistent SELinux disable.
type Disabler interface {
	Disable(ctx context.Context) error
}

// Rebooter terminates the process by restarting the host. It is an
// intentional suspension point: continuation happens only via a fresh
// invocation that reloads the state record.
type Rebooter interface {
	Reboot(ctx context.Context) error
}

// Controller owns the phase progression.
type Controller struct {
	Store      state.Store
	Steps      Steps
	Classifier Classifier
	Transcript Transcript
	Disabler   Disabler
	Confirm    prompt.Confirmer
	Reboot     Rebooter
}

// Run resumes from the persisted phase and advances until done, a fatal
// failure, or the reboot suspension point.
func (c *Controller) Run(ctx context.Context) error {
	logger := log.WithFunc("phase.Run")

	rec := c.Store.Load(ctx)
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	logger.Infof(ctx, "resuming at phase %s (run %s)", rec.Phase, rec.RunID)
	c.Transcript.Printf("=== %s | run %s | resuming at phase %s",
		time.Now().Format(time.RFC3339), rec.RunID, rec.Phase)

	for {
		switch rec.Phase {
		case types.PhaseStart:
			if err := c.Steps.BaseInstall(ctx); err != nil {
				return err
			}
			if err := c.advance(ctx, &rec, types.PhaseSetup); err != nil {
				return err
			}

		case types.PhaseSetup:
			code, err := c.Steps.Setup(ctx)
			if err != nil {
				return err
			}
			if code == 0 {
				if err := c.advance(ctx, &rec, types.PhaseFeeds); err != nil {
					return err
				}
				continue
			}
			return c.remediate(ctx, &rec, code)

		case types.PhasePostRebootSetup:
			// No classification branch here: a second failure after the
			// disable + reboot is an unrelated fault and surfaces directly.
			code, err := c.Steps.Setup(ctx)
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitCodeError{Op: "setup after reboot", Code: code}
			}
			if err := c.advance(ctx, &rec, types.PhaseFeeds); err != nil {
				return err
			}

		case types.PhaseFeeds:
			c.Steps.FeedSync(ctx)
			if err := c.advance(ctx, &rec, types.PhaseDone); err != nil {
				return err
			}
			c.Steps.Summary(ctx)

		case types.PhaseDone:
			logger.Infof(ctx, "installation complete")
			return nil

		default:
			// FileStore.Load validates, but the Store is injectable.
			return fmt.Errorf("state record holds unknown phase %q", rec.Phase)
		}
	}
}

// remediate handles a non-zero setup exit: classify, confirm, disable,
// persist the post-reboot phase, then reboot. The state write strictly
// precedes the reboot; losing that ordering would lose resumption on a
// crash during reboot.
func (c *Controller) remediate(ctx context.Context, rec *types.StateRecord, code int) error {
	logger := log.WithFunc("phase.remediate")

	text, err := c.Transcript.Contents()
	if err != nil {
		logger.Warnf(ctx, "read transcript for classification: %v", err)
	}
	if c.Classifier.Classify(text) != types.OutcomeSELinuxMustBeDisabled {
		return &ExitCodeError{Op: "setup", Code: code}
	}

	logger.Infof(ctx, "setup requires SELinux to be fully disabled")
	if !c.Confirm.Confirm("Disable SELinux persistently and reboot now?") {
		return ErrRemediationDeclined
	}

	if err := c.Disabler.Disable(ctx); err != nil {
		// Best-effort by contract; the reboot proceeds so the config-file
		// change (if any) takes effect.
		logger.Warnf(ctx, "SELinux disable incomplete: %v", err)
	}

	if err := c.advance(ctx, rec, types.PhasePostRebootSetup); err != nil {
		return err
	}
	logger.Infof(ctx, "rebooting; rerun after the host is back up if resumption does not start automatically")
	return c.Reboot.Reboot(ctx)
}

// advance persists the transition before any work of the next phase runs,
// so a crash mid-phase at worst re-executes an idempotent step.
func (c *Controller) advance(ctx context.Context, rec *types.StateRecord, next types.Phase) error {
	rec.Phase = next
	rec.UpdatedAt = time.Now().UTC()
	if err := c.Store.Save(ctx, *rec); err != nil {
		return err
	}
	log.WithFunc("phase.advance").Infof(ctx, "phase -> %s", next)
	return nil
}
