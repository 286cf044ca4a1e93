package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/atengine/internal/transport"
)

// PortLister enumerates serial devices. Replaced in tests.
var PortLister = transport.SerialPorts

// NewPortsCommand creates the ports command.
func NewPortsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ports",
		Short:         "List serial ports usable with serve --transport serial",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			ports, err := PortLister()
			if err != nil {
				_ = formatter.Error(ErrCodeTransport, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to list serial ports", err)
			}
			if ports == nil {
				ports = []string{}
			}

			if formatter.JSON() {
				return formatter.Success(ports)
			}
			if len(ports) == 0 {
				fmt.Fprintln(formatter.Writer, "No serial ports found.")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(formatter.Writer, p)
			}
			return nil
		},
	}
}
