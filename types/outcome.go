package types

// Outcome classifies a failed setup command.
type Outcome string

const (
	// OutcomeSELinuxMustBeDisabled is the known vendor condition: the
	// setup tool refuses to run until SELinux is fully disabled.
	OutcomeSELinuxMustBeDisabled Outcome = "selinux_must_be_disabled"
	// OutcomeOther is any failure the installer has no remediation for.
	OutcomeOther Outcome = "other"
)
