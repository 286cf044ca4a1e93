package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/atengine/internal/ir"
)

// createTestStore opens a fresh journal in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSession(id string, seq int64) ir.Session {
	return ir.Session{
		ID:            id,
		TableName:     "modem",
		TableHash:     "test-hash",
		Transport:     "stdio",
		Seq:           seq,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

func createTestExchange(sessionID string, seq int64, command, op, reason string) ir.Exchange {
	return ir.Exchange{
		SessionID: sessionID,
		Seq:       seq,
		Command:   command,
		Op:        op,
		OK:        reason == "none",
		Reason:    reason,
	}
}
