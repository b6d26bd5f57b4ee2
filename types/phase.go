package types

import "time"

// Phase is a named stage of the installation, persisted across process
// restarts (including the SELinux-disable reboot).
type Phase string

const (
	// PhaseStart means nothing is installed yet; base packages and the
	// third-party repository still need to be set up.
	PhaseStart Phase = "start"
	// PhaseSetup means the base install is complete and the product's
	// setup command must run.
	PhaseSetup Phase = "setup"
	// PhasePostRebootSetup means SELinux was disabled and the host
	// rebooted; the setup command must be retried.
	PhasePostRebootSetup Phase = "postreboot_setup"
	// PhaseFeeds means setup succeeded; the feed sync still has to run.
	PhaseFeeds Phase = "feeds"
	// PhaseDone is terminal.
	PhaseDone Phase = "done"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseStart, PhaseSetup, PhasePostRebootSetup, PhaseFeeds, PhaseDone:
		return true
	}
	return false
}

func (p Phase) String() string { return string(p) }

// StateRecord is the single persisted record driving resumption. It is
// rewritten in full on every phase transition; the phase field is the sole
// source of truth on relaunch.
type StateRecord struct {
	Phase     Phase     `json:"phase"`
	RunID     string    `json:"run_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}
