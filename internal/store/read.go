package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/atengine/internal/ir"
)

// ErrNotFound is returned by ReadSession for an unknown ID.
var ErrNotFound = errors.New("store: not found")

// ReadSessions returns every session ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when the journal is empty.
func (s *Store) ReadSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, table_hash, transport, seq, engine_version, ir_version
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession returns one session by ID, or ErrNotFound.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, table_name, table_hash, transport, seq, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}

// ReadExchanges returns the exchanges of one session ordered by seq.
// Returns an empty slice (not nil) if the session has none.
func (s *Store) ReadExchanges(ctx context.Context, sessionID string) ([]ir.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, command, op, ok, reason
		FROM exchanges
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := []ir.Exchange{}
	for rows.Next() {
		var ex ir.Exchange
		var ok int
		if err := rows.Scan(&ex.SessionID, &ex.Seq, &ex.Command, &ex.Op, &ok, &ex.Reason); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.OK = ok != 0
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return exchanges, nil
}

// CountByReason tallies the exchanges of one session by reason.
func (s *Store) CountByReason(ctx context.Context, sessionID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reason, COUNT(*)
		FROM exchanges
		WHERE session_id = ?
		GROUP BY reason
		ORDER BY reason
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count exchanges: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (ir.Session, error) {
	var sess ir.Session
	err := row.Scan(
		&sess.ID,
		&sess.TableName,
		&sess.TableHash,
		&sess.Transport,
		&sess.Seq,
		&sess.EngineVersion,
		&sess.IRVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, err
	}
	if err != nil {
		return sess, fmt.Errorf("scan session: %w", err)
	}
	return sess, nil
}

// MaxSeq returns the highest seq stamped on any session or exchange, or
// 0 for an empty journal. A host resumes its clock from here so seqs
// stay unique across restarts.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM sessions), 0),
			COALESCE((SELECT MAX(seq) FROM exchanges), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq, nil
}
