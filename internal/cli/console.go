package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/atengine/internal/device"
	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/transport"
)

const consolePrompt = "at> "

// ConsoleOptions holds flags for the console command.
type ConsoleOptions struct {
	*RootOptions
	TableName string
	Buffer    int
	History   string
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsoleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "console <table.cue|dir>",
		Short: "Type AT commands at an in-process engine",
		Long: `Start an interactive console on a command table.

Every line typed is sent to the engine followed by a newline and the
reply is printed. Lines starting with '.' are console commands:

  .values   show every variable
  .reset    restore variables to their defaults
  .help     list console commands
  .quit     leave the console

With --verbose the resolved command, operation and failure reason of
each exchange are shown as well.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TableName, "table-name", "", "table to load when several are declared")
	cmd.Flags().IntVar(&opts.Buffer, "buffer", 0, "engine scratch buffer size (0 = device minimum)")
	cmd.Flags().StringVar(&opts.History, "history", defaultHistoryPath(), "history file (empty to disable)")

	return cmd
}

func runConsole(opts *ConsoleOptions, path string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	spec, err := LoadTable(path, opts.TableName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load table", err)
	}
	dev, err := device.New(spec, device.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build device", err)
	}

	c, err := newConsole(dev, opts.Buffer, cmd.OutOrStdout())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}
	c.verbose = opts.Verbose

	editor := NewLineEditor(cmd.InOrStdin(), cmd.OutOrStdout(), opts.History)
	defer editor.Close()

	if editor.Interactive() {
		fmt.Fprintf(c.out, "table %s, %d commands. Type .help for console commands.\n", spec.Name, len(spec.Commands))
	}
	return c.run(editor)
}

type lineSource interface {
	GetLine(prompt string) (string, error)
}

// console owns an engine over an in-memory transport. Each typed line is
// fed whole and the engine is stepped until it needs more input.
type console struct {
	dev     *device.Device
	mem     *transport.Memory
	eng     *engine.Engine
	out     io.Writer
	verbose bool
	last    []engine.Exchange
}

func newConsole(dev *device.Device, buffer int, out io.Writer) (*console, error) {
	if buffer == 0 {
		buffer = dev.MinBuffer()
	}
	c := &console{dev: dev, mem: &transport.Memory{}, out: out}
	eng, err := engine.New(engine.Config{
		Commands: dev.Commands(),
		Buffer:   make([]byte, buffer),
		Observer: c,
	}, c.mem)
	if err != nil {
		return nil, err
	}
	c.eng = eng
	return c, nil
}

func (c *console) Exchange(ex engine.Exchange) {
	c.last = append(c.last, ex)
}

func (c *console) run(src lineSource) error {
	for {
		line, err := src.GetLine(consolePrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "read input", err)
		}

		if strings.HasPrefix(strings.TrimSpace(line), ".") {
			if quit := c.meta(strings.TrimSpace(line)); quit {
				return nil
			}
			continue
		}
		c.send(line)
	}
}

// send feeds one line plus a newline terminator and prints the reply.
func (c *console) send(line string) {
	c.mem.Feed([]byte(line))
	c.mem.Feed([]byte{'\n'})
	for c.eng.Step() {
	}

	reply := strings.TrimPrefix(string(c.mem.Take()), "\n")
	fmt.Fprint(c.out, reply)

	if c.verbose {
		for _, ex := range c.last {
			name := ex.Command
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(c.out, "  [%s %s: %s]\n", name, ex.Op, ex.Reason)
		}
	}
	c.last = c.last[:0]
}

func (c *console) meta(cmd string) (quit bool) {
	switch cmd {
	case ".quit", ".exit":
		return true
	case ".values":
		values := c.dev.Values()
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) == 0 {
			fmt.Fprintln(c.out, "no variables")
		}
		for _, name := range names {
			fmt.Fprintf(c.out, "%s=%s\n", name, values[name])
		}
	case ".reset":
		c.dev.Reset()
		c.eng.Reset()
		fmt.Fprintln(c.out, "variables reset")
	case ".help":
		fmt.Fprintln(c.out, ".values  show every variable")
		fmt.Fprintln(c.out, ".reset   restore variables to their defaults")
		fmt.Fprintln(c.out, ".quit    leave the console")
	default:
		fmt.Fprintf(c.out, "unknown console command %s (try .help)\n", cmd)
	}
	return false
}
