package main

import (
	"fmt"
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/objtree"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <device-path>",
	Short: "Connect a mock device",
	Long: `Connects the device at <device-path>, which makes it expose its GATT
services, then prints the device properties.

Examples:
  bluem connect /org/bluem/hci1/dev_00_16_3e_12_34_56`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	device := objtree.Path(args[0])
	if !dbus.ObjectPath(device).IsValid() {
		return fmt.Errorf("invalid device path %q", args[0])
	}

	client, cfg, closeFn, err := dialMock(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	cmd.SilenceUsage = true

	ctx, cancel := callContext(cmd, cfg)
	defer cancel()

	if err := client.Connect(ctx, device); err != nil {
		return err
	}
	props, err := client.GetAll(ctx, device, bluem.DeviceInterface)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Connected %s\n%s", device, formatProperties(props, "  "))
	return nil
}

// formatProperties renders a{sv} as sorted "key = value" lines
func formatProperties(props map[string]dbus.Variant, indent string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out string
	for _, k := range keys {
		out += fmt.Sprintf("%s%s = %v\n", indent, k, props[k].Value())
	}
	return out
}
