package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/atengine/internal/ir"
)

// WriteSession inserts a session record. Duplicate IDs are ignored.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, table_name, table_hash, transport, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.TableName,
		sess.TableHash,
		sess.Transport,
		sess.Seq,
		sess.EngineVersion,
		sess.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteExchange inserts one exchange record. A second write with the same
// (session_id, seq) is ignored. The session must already exist.
func (s *Store) WriteExchange(ctx context.Context, ex ir.Exchange) error {
	if err := insertExchange(ctx, s.db, ex); err != nil {
		return fmt.Errorf("write exchange: %w", err)
	}
	return nil
}

// WriteExchanges inserts a batch of exchanges in one transaction.
func (s *Store) WriteExchanges(ctx context.Context, exs []ir.Exchange) error {
	if len(exs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write exchanges: begin: %w", err)
	}
	defer tx.Rollback()

	for _, ex := range exs {
		if err := insertExchange(ctx, tx, ex); err != nil {
			return fmt.Errorf("write exchanges: seq %d: %w", ex.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write exchanges: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExchange(ctx context.Context, db execer, ex ir.Exchange) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO exchanges
		(session_id, seq, command, op, ok, reason)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		ex.SessionID,
		ex.Seq,
		ex.Command,
		ex.Op,
		boolToInt(ex.OK),
		ex.Reason,
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
