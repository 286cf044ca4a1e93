package store

import (
	"context"
	"errors"
	"testing"
)

func TestReadSessions_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadSessions(context.Background())
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	if got == nil {
		t.Error("ReadSessions() should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("got %d sessions, want 0", len(got))
	}
}

func TestReadSessions_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, sess := range []struct {
		id  string
		seq int64
	}{
		{"c", 5},
		{"a", 9},
		{"b", 5},
		{"d", 1},
	} {
		if err := s.WriteSession(ctx, createTestSession(sess.id, sess.seq)); err != nil {
			t.Fatalf("WriteSession(%s) failed: %v", sess.id, err)
		}
	}

	got, err := s.ReadSessions(ctx)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}

	want := []string{"d", "b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("sessions[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadSession() error = %v, want ErrNotFound", err)
	}
}

func TestReadExchanges_OrderedAndScoped(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		if err := s.WriteSession(ctx, createTestSession(id, 1)); err != nil {
			t.Fatalf("WriteSession(%s) failed: %v", id, err)
		}
	}

	writes := []struct {
		session string
		seq     int64
		command string
	}{
		{"s1", 7, "I"},
		{"s2", 3, "Z"},
		{"s1", 4, "+CSQ"},
		{"s1", 5, "E"},
	}
	for _, w := range writes {
		if err := s.WriteExchange(ctx, createTestExchange(w.session, w.seq, w.command, "execute", "none")); err != nil {
			t.Fatalf("WriteExchange() failed: %v", err)
		}
	}

	got, err := s.ReadExchanges(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadExchanges() failed: %v", err)
	}

	want := []string{"+CSQ", "E", "I"}
	if len(got) != len(want) {
		t.Fatalf("got %d exchanges, want %d", len(got), len(want))
	}
	for i, cmd := range want {
		if got[i].Command != cmd {
			t.Errorf("exchanges[%d].Command = %q, want %q", i, got[i].Command, cmd)
		}
		if got[i].SessionID != "s1" {
			t.Errorf("exchanges[%d] leaked from session %q", i, got[i].SessionID)
		}
	}
}

func TestReadExchanges_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadExchanges(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ReadExchanges() failed: %v", err)
	}
	if got == nil {
		t.Error("ReadExchanges() should return an empty slice, not nil")
	}
}

func TestCountByReason(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteSession(ctx, createTestSession("s1", 1)); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}

	reasons := []string{"none", "none", "not_found", "ambiguous", "none", "not_found"}
	for i, r := range reasons {
		if err := s.WriteExchange(ctx, createTestExchange("s1", int64(i+2), "", "execute", r)); err != nil {
			t.Fatalf("WriteExchange() failed: %v", err)
		}
	}

	got, err := s.CountByReason(ctx, "s1")
	if err != nil {
		t.Fatalf("CountByReason() failed: %v", err)
	}

	want := map[string]int{"none": 3, "not_found": 2, "ambiguous": 1}
	if len(got) != len(want) {
		t.Fatalf("CountByReason() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("count[%q] = %d, want %d", k, got[k], v)
		}
	}
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() on empty journal = %d, want 0", seq)
	}

	if err := s.WriteSession(ctx, createTestSession("s1", 4)); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	if seq, _ = s.MaxSeq(ctx); seq != 4 {
		t.Errorf("MaxSeq() = %d, want 4", seq)
	}

	if err := s.WriteExchange(ctx, createTestExchange("s1", 9, "E", "execute", "none")); err != nil {
		t.Fatalf("WriteExchange() failed: %v", err)
	}
	if seq, _ = s.MaxSeq(ctx); seq != 9 {
		t.Errorf("MaxSeq() = %d, want 9", seq)
	}
}
