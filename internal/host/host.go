package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/atengine/internal/device"
	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/ir"
	"github.com/roach88/atengine/internal/transport"
)

// Config is shared by every session a host serves.
type Config struct {
	Device *device.Device

	// Buffer is the scratch size of each engine. Zero means
	// Device.MinBuffer().
	Buffer int

	// Journal is optional.
	Journal Journal

	// Clock and Sessions default to a fresh clock and UUIDv7 IDs.
	Clock    *Clock
	Sessions SessionIDGenerator

	Logger *slog.Logger
}

func (c *Config) withDefaults() (Config, error) {
	out := *c
	if out.Device == nil {
		return out, errors.New("host: no device configured")
	}
	if out.Buffer == 0 {
		out.Buffer = out.Device.MinBuffer()
	}
	if out.Clock == nil {
		out.Clock = NewClock()
	}
	if out.Sessions == nil {
		out.Sessions = UUIDv7Generator{}
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out, nil
}

// Serve runs one engine over s until the input ends, the output fails or
// ctx is cancelled. A clean end of input returns nil.
//
// Every call opens its own session with a private scratch buffer, so
// Serve may run concurrently for several streams sharing one Config.
func Serve(ctx context.Context, cfg Config, s *transport.Stream) error {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return err
	}
	log := cfg.Logger

	spec := cfg.Device.Spec()
	hash, err := ir.TableHash(spec)
	if err != nil {
		return fmt.Errorf("hash table: %w", err)
	}

	sess := ir.Session{
		ID:            cfg.Sessions.Generate(),
		TableName:     spec.Name,
		TableHash:     hash,
		Transport:     s.Name(),
		Seq:           cfg.Clock.Next(),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if cfg.Journal != nil {
		if err := cfg.Journal.WriteSession(ctx, sess); err != nil {
			return fmt.Errorf("open session: %w", err)
		}
	}

	rec := &recorder{
		session: sess.ID,
		clock:   cfg.Clock,
		log:     log,
		journal: cfg.Journal,
	}

	e, err := engine.New(engine.Config{
		Commands: cfg.Device.Commands(),
		Buffer:   make([]byte, cfg.Buffer),
		Observer: rec,
	}, s)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	log.Info("session opened",
		"session", sess.ID,
		"transport", sess.Transport,
		"table", sess.TableName,
		"buffer", cfg.Buffer,
	)
	defer func() {
		log.Info("session closed",
			"session", sess.ID,
			"exchanges", rec.total,
			"errors", rec.failed,
		)
	}()

	for {
		for e.Step() {
		}

		if err := s.Flush(); err != nil {
			return fmt.Errorf("flush %s: %w", sess.Transport, err)
		}
		if err := rec.flush(ctx); err != nil {
			log.Error("journal write failed", "session", sess.ID, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Ready():
		case <-s.Done():
			// Done closes after the last byte was queued.
			if s.Buffered() == 0 {
				if err := s.Err(); err != nil {
					return fmt.Errorf("read %s: %w", sess.Transport, err)
				}
				return nil
			}
		}
	}
}
