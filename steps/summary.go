package steps

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/projecteru2/core/log"
)

// Summary lists non-loopback interfaces on stdout once the install reaches
// its terminal phase.
func (r *Runner) Summary(ctx context.Context) {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.WithFunc("steps.Summary").Warnf(ctx, "list interfaces: %v", err)
		return
	}
	fmt.Println("OpenVAS is installed. The web UI listens on port 9392:")
	WriteSummary(os.Stdout, ifaces)
}

// WriteSummary prints the host's network interfaces so the operator knows
// which addresses the scanner's web UI is reachable on.
func WriteSummary(w io.Writer, ifaces []net.Interface) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INTERFACE\tSTATE\tADDRESSES")
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		state := "down"
		if iface.Flags&net.FlagUp != 0 {
			state = "up"
		}
		var addrs []string
		if got, err := iface.Addrs(); err == nil {
			for _, a := range got {
				addrs = append(addrs, a.String())
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", iface.Name, state, strings.Join(addrs, ", "))
	}
	tw.Flush() //nolint:errcheck
}
