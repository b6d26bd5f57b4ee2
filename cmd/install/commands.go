package install

import "github.com/spf13/cobra"

// Actions defines the installation lifecycle operations.
type Actions interface {
	Run(cmd *cobra.Command, args []string) error
	Status(cmd *cobra.Command, args []string) error
	Reset(cmd *cobra.Command, args []string) error
}

// Commands builds the installation command set.
func Commands(h Actions) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "run",
			Short: "Run or resume the phased OpenVAS installation",
			Long: `Run the installation from its persisted phase.

A setup failure caused by SELinux triggers a confirmed disable + reboot;
rerun this command after the host is back up to resume where it left off.`,
			Args: cobra.NoArgs,
			RunE: h.Run,
		},
		{
			Use:   "status",
			Short: "Show the persisted installation phase",
			Args:  cobra.NoArgs,
			RunE:  h.Status,
		},
		{
			Use:   "reset",
			Short: "Reset the persisted phase to start (re-runs every step)",
			Args:  cobra.NoArgs,
			RunE:  h.Reset,
		},
	}
}
