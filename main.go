package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/projecteru2/vasup/cmd"
	"github.com/projecteru2/vasup/phase"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode preserves the two distinct fatal paths: operator decline is 1,
// an unclassified setup failure propagates the command's own exit code.
func exitCode(err error) int {
	if errors.Is(err, phase.ErrRemediationDeclined) {
		return 1
	}
	var ece *phase.ExitCodeError
	if errors.As(err, &ece) && ece.Code > 0 {
		return ece.Code
	}
	return 1
}
