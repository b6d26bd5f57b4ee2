package install

import (
	"errors"
	"fmt"
	"time"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	cmdcore "github.com/projecteru2/vasup/cmd/core"
	"github.com/projecteru2/vasup/classify"
	"github.com/projecteru2/vasup/config"
	"github.com/projecteru2/vasup/phase"
	"github.com/projecteru2/vasup/prompt"
	"github.com/projecteru2/vasup/runner"
	"github.com/projecteru2/vasup/selinux"
	"github.com/projecteru2/vasup/state"
	"github.com/projecteru2/vasup/steps"
	"github.com/projecteru2/vasup/types"
	"github.com/projecteru2/vasup/utils"
)

type Handler struct {
	cmdcore.BaseHandler
}

// confirmer picks the prompt implementation for this invocation.
func confirmer(conf *config.Config) prompt.Confirmer {
	if conf.AssumeYes {
		return prompt.Fixed(true)
	}
	return prompt.NewTerminal()
}

func (h Handler) Run(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := utils.EnsureDirs(conf.RootDir, conf.LogDir); err != nil {
		return err
	}

	tr, err := runner.OpenTranscript(ctx, conf.TranscriptPath(), conf.TranscriptAlias)
	if err != nil {
		return err
	}
	defer tr.Close() //nolint:errcheck

	exec := runner.New(tr)
	confirm := confirmer(conf)

	ctrl := &phase.Controller{
		Store:      state.NewFileStore(conf.StateLockPath(), conf.StatePath()),
		Steps:      &steps.Runner{Conf: conf, Exec: exec, Confirm: confirm},
		Classifier: classify.New(conf.Setup.SELinuxPhrase),
		Transcript: tr,
		Disabler: &selinux.Disabler{
			ConfigPath: conf.Setup.SELinuxConfigPath,
			Grubby:     conf.Setup.GrubbyBinary,
			Exec:       exec,
		},
		Confirm: confirm,
		Reboot:  &steps.SystemReboot{Conf: conf, Exec: exec},
	}

	if err := ctrl.Run(ctx); err != nil {
		if errors.Is(err, steps.ErrAborted) {
			log.WithFunc("cmd.run").Infof(ctx, "installation aborted by operator")
			return nil
		}
		return err
	}
	return nil
}

func (h Handler) Status(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}

	rec := state.NewFileStore(conf.StateLockPath(), conf.StatePath()).Load(ctx)
	fmt.Printf("Phase:      %s\n", rec.Phase)
	if rec.RunID != "" {
		fmt.Printf("Run ID:     %s\n", rec.RunID)
	}
	if !rec.UpdatedAt.IsZero() {
		fmt.Printf("Updated:    %s ago\n", units.HumanDuration(time.Since(rec.UpdatedAt)))
	}
	if size := utils.FileSize(conf.TranscriptPath()); size > 0 {
		fmt.Printf("Transcript: %s (%s)\n", conf.TranscriptPath(), units.BytesSize(float64(size)))
	}
	return nil
}

func (h Handler) Reset(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}

	store := state.NewFileStore(conf.StateLockPath(), conf.StatePath())
	rec := store.Load(ctx)
	if rec.Phase == types.PhaseStart {
		log.WithFunc("cmd.reset").Infof(ctx, "already at phase %s", types.PhaseStart)
		return nil
	}
	if !confirmer(conf).Confirm(fmt.Sprintf("Reset phase %s to %s? Every step will re-run", rec.Phase, types.PhaseStart)) {
		return nil
	}
	if err := store.Save(ctx, types.StateRecord{Phase: types.PhaseStart, UpdatedAt: time.Now().UTC()}); err != nil {
		return err
	}
	log.WithFunc("cmd.reset").Infof(ctx, "phase reset to %s", types.PhaseStart)
	return nil
}
