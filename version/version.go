package version

import (
	"fmt"
	"runtime"
)

// Populated at build time via -ldflags.
var (
	Version  = "unknown"
	Revision = "HEAD"
	BuiltAt  = "now"
)

// String renders the full version banner.
func String() string {
	return fmt.Sprintf("Version:        %s\nGit hash:       %s\nBuilt:          %s\nGolang version: %s\nOS/Arch:        %s/%s\n",
		Version, Revision, BuiltAt, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
