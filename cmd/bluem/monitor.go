package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/busd"
	"golang.org/x/term"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print object and property changes of the running mock",
	Long: `Subscribes to InterfacesAdded and PropertiesChanged from the mock and prints
each one as it arrives. Press Ctrl+C to stop.

Examples:
  bluem monitor
  bluem monitor --no-color`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var monitorNoColor bool

func init() {
	monitorCmd.Flags().BoolVar(&monitorNoColor, "no-color", false, "Disable colored output")
}

var (
	addedLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	changedLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	pathColor    = color.New(color.FgCyan).SprintFunc()
)

func runMonitor(cmd *cobra.Command, _ []string) error {
	if monitorNoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	client, _, closeFn, err := dialMock(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	signals := make(chan *dbus.Signal, 64)
	unsubscribe, err := client.Subscribe(signals)
	if err != nil {
		return err
	}
	defer unsubscribe()

	fmt.Fprintln(cmd.ErrOrStderr(), "Monitoring. Press Ctrl+C to stop...")
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("bus connection closed")
			}
			if line := formatSignal(sig); line != "" {
				fmt.Fprint(cmd.OutOrStdout(), line)
			}
		}
	}
}

// formatSignal renders one mock signal; unrelated signals render as ""
func formatSignal(sig *dbus.Signal) string {
	switch sig.Name {
	case busd.InterfacesAddedSignal:
		if len(sig.Body) < 2 {
			return ""
		}
		path, _ := sig.Body[0].(dbus.ObjectPath)
		ifaces, _ := sig.Body[1].(map[string]map[string]dbus.Variant)

		names := make([]string, 0, len(ifaces))
		for name := range ifaces {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", addedLabel("[added]"), pathColor(string(path)))
		for _, name := range names {
			fmt.Fprintf(&b, "  %s\n", name)
			b.WriteString(formatProperties(ifaces[name], "    "))
		}
		return b.String()

	case busd.PropertiesChangedSignal:
		if len(sig.Body) < 2 {
			return ""
		}
		iface, _ := sig.Body[0].(string)
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		return fmt.Sprintf("%s %s %s\n%s", changedLabel("[changed]"), pathColor(string(sig.Path)), iface,
			formatProperties(changed, "    "))

	default:
		return ""
	}
}
