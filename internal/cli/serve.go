package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/atengine/internal/device"
	"github.com/roach88/atengine/internal/host"
	"github.com/roach88/atengine/internal/store"
	"github.com/roach88/atengine/internal/transport"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	Flags      ServeConfig

	// Sessions overrides session ID generation (for testing).
	// If nil, sessions get UUIDv7 IDs.
	Sessions host.SessionIDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	defaults := DefaultServeConfig()

	cmd := &cobra.Command{
		Use:   "serve [table.cue|dir]",
		Short: "Serve a command table to a host",
		Long: `Serve a command table over stdio, a serial port or TCP.

Each connection gets its own engine; all of them share one simulated
device, so a write from one client is visible to the others. With --db
every exchange is journaled to SQLite for later inspection with
'atengine trace'.

Settings come from built-in defaults, then the --config TOML file, then
explicit flags.

Example:
  atengine serve ./tables/modem.cue
  atengine serve --transport tcp --listen :2323 --db ./at.db ./tables
  atengine serve --transport serial --device /dev/ttyUSB0 --baud 9600 modem.cue
  atengine serve --config ./serve.toml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "", "path to a TOML serve config")
	f.StringVar(&opts.Flags.TableName, "table-name", "", "table to serve when several are declared")
	f.StringVar(&opts.Flags.Transport, "transport", defaults.Transport, "transport (stdio|serial|tcp)")
	f.StringVar(&opts.Flags.Device, "device", "", "serial device path")
	f.IntVar(&opts.Flags.Baud, "baud", defaults.Baud, "serial baud rate")
	f.StringVar(&opts.Flags.Listen, "listen", defaults.Listen, "TCP listen address")
	f.IntVar(&opts.Flags.Buffer, "buffer", 0, "engine scratch buffer size (0 = device minimum)")
	f.StringVar(&opts.Flags.DB, "db", "", "path to a SQLite exchange journal")
	f.IntVar(&opts.Flags.QueueSize, "queue-size", 0, "input queue size in bytes (0 = default)")

	return cmd
}

// resolveServeConfig layers defaults, the config file and changed flags.
func resolveServeConfig(opts *ServeOptions, args []string, cmd *cobra.Command) (ServeConfig, error) {
	cfg := DefaultServeConfig()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = loadServeConfig(opts.ConfigPath, cfg); err != nil {
			return ServeConfig{}, err
		}
	}

	f := cmd.Flags()
	if f.Changed("table-name") {
		cfg.TableName = opts.Flags.TableName
	}
	if f.Changed("transport") {
		cfg.Transport = opts.Flags.Transport
	}
	if f.Changed("device") {
		cfg.Device = opts.Flags.Device
	}
	if f.Changed("baud") {
		cfg.Baud = opts.Flags.Baud
	}
	if f.Changed("listen") {
		cfg.Listen = opts.Flags.Listen
	}
	if f.Changed("buffer") {
		cfg.Buffer = opts.Flags.Buffer
	}
	if f.Changed("db") {
		cfg.DB = opts.Flags.DB
	}
	if f.Changed("queue-size") {
		cfg.QueueSize = opts.Flags.QueueSize
	}
	if len(args) == 1 {
		cfg.Table = args[0]
	}

	return cfg, cfg.Validate()
}

func runServe(opts *ServeOptions, args []string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := resolveServeConfig(opts, args, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	spec, err := LoadTable(cfg.Table, cfg.TableName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load table", err)
	}

	dev, err := device.New(spec, device.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build device", err)
	}
	if cfg.Buffer > 0 && cfg.Buffer < dev.MinBuffer() {
		logger.Warn("buffer below device minimum; long values will overflow",
			"buffer", cfg.Buffer, "min", dev.MinBuffer())
	}

	hostCfg := host.Config{
		Device:   dev,
		Buffer:   cfg.Buffer,
		Sessions: opts.Sessions,
		Logger:   logger,
	}

	if cfg.DB != "" {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		last, err := st.MaxSeq(cmd.Context())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		hostCfg.Journal = st
		hostCfg.Clock = host.NewClockAt(last)
		logger.Info("journal ready", "path", cfg.DB, "seq", last)
	}

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	logger.Info("serving table",
		"table", spec.Name,
		"commands", len(spec.Commands),
		"transport", describeServe(cfg),
	)

	streamOpts := append(cfg.streamOptions(), transport.WithLogger(logger))
	err = serveTransport(ctx, cfg, hostCfg, cmd, streamOpts)
	var exitErr *ExitError
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.As(err, &exitErr):
		return exitErr
	default:
		return WrapExitError(ExitFailure, "serve failed", err)
	}

	logger.Info("serve stopped")
	return nil
}

func serveTransport(ctx context.Context, cfg ServeConfig, hostCfg host.Config, cmd *cobra.Command, streamOpts []transport.Option) error {
	switch cfg.Transport {
	case TransportSerial:
		s, err := transport.OpenSerial(cfg.Device, cfg.Baud, streamOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open serial device", err)
		}
		defer s.Close()
		return host.Serve(ctx, hostCfg, s)

	case TransportTCP:
		return transport.ListenAndServe(ctx, cfg.Listen, func(ctx context.Context, s *transport.Stream) error {
			return host.Serve(ctx, hostCfg, s)
		}, streamOpts...)

	default:
		s := transport.Stdio(cmd.InOrStdin(), cmd.OutOrStdout(), streamOpts...)
		defer s.Close()
		return host.Serve(ctx, hostCfg, s)
	}
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// describeServe renders the resolved settings for --verbose runs.
func describeServe(cfg ServeConfig) string {
	switch cfg.Transport {
	case TransportSerial:
		return fmt.Sprintf("%s @ %d baud", cfg.Device, cfg.Baud)
	case TransportTCP:
		return "tcp " + cfg.Listen
	default:
		return "stdio"
	}
}
