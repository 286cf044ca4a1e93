package host

import (
	"context"
	"log/slog"

	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/ir"
)

// Journal persists sessions and their exchanges. *store.Store implements it.
type Journal interface {
	WriteSession(ctx context.Context, sess ir.Session) error
	WriteExchanges(ctx context.Context, exs []ir.Exchange) error
}

// recorder is the engine observer of one session. Exchange runs inside
// Step and only appends; the superloop hands the batch to the journal
// between steps.
type recorder struct {
	session string
	clock   *Clock
	log     *slog.Logger
	journal Journal

	pending []ir.Exchange
	total   int
	failed  int
}

func (r *recorder) Exchange(ex engine.Exchange) {
	rec := ir.Exchange{
		SessionID: r.session,
		Seq:       r.clock.Next(),
		Command:   ex.Command,
		Op:        ex.Op.String(),
		OK:        ex.OK,
		Reason:    ex.Reason.String(),
	}

	r.total++
	if !ex.OK {
		r.failed++
	}

	r.log.Debug("exchange",
		"session", r.session,
		"seq", rec.Seq,
		"command", rec.Command,
		"op", rec.Op,
		"ok", rec.OK,
		"reason", rec.Reason,
	)

	if r.journal != nil {
		r.pending = append(r.pending, rec)
	}
}

// flush writes pending exchanges. The batch is dropped even on failure so
// a broken journal cannot grow memory without bound.
func (r *recorder) flush(ctx context.Context) error {
	if r.journal == nil || len(r.pending) == 0 {
		return nil
	}
	err := r.journal.WriteExchanges(ctx, r.pending)
	r.pending = r.pending[:0]
	return err
}
