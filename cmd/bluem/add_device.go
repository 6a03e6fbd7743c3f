package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/objtree"
)

// addDeviceCmd represents the add-device command
var addDeviceCmd = &cobra.Command{
	Use:   "add-device",
	Short: "Ask the running mock for a new random device",
	Long: `Calls AddDevice on the admin object and prints the new device path.

Examples:
  bluem add-device
  bluem connect $(bluem add-device)`,
	Args: cobra.NoArgs,
	RunE: runAddDevice,
}

func runAddDevice(cmd *cobra.Command, _ []string) error {
	client, cfg, closeFn, err := dialMock(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	cmd.SilenceUsage = true

	ctx, cancel := callContext(cmd, cfg)
	defer cancel()

	device, err := client.AddDevice(ctx, objtree.Path(cfg.AdminPath))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), device)
	return nil
}
