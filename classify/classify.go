// Package classify decides whether a failed setup run hit the known
// SELinux condition. The upstream tool emits no structured error code, only
// free-text diagnostics, so this is a deliberate message-based match; the
// phrase is injected from configuration to absorb vendor message drift.
package classify

import (
	"strings"

	"github.com/projecteru2/vasup/types"
)

// Classifier matches a single vendor phrase against log text.
type Classifier struct {
	phrase string
}

// New creates a Classifier for phrase. Matching is case-insensitive.
func New(phrase string) *Classifier {
	return &Classifier{phrase: strings.ToLower(phrase)}
}

// Classify scans the accumulated transcript text. The phrase may have been
// emitted by any command earlier in the same phase, hence the whole text is
// searched rather than the most recent command's output.
func (c *Classifier) Classify(logText string) types.Outcome {
	if c.phrase != "" && strings.Contains(strings.ToLower(logText), c.phrase) {
		return types.OutcomeSELinuxMustBeDisabled
	}
	return types.OutcomeOther
}
