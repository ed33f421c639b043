package store

import (
	"path/filepath"
	"testing"

	"docchat/internal/domain"
)

func newTestStore(t *testing.T) *BoltHistoryStore {
	t.Helper()

	s, err := NewBoltHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndListOrder(t *testing.T) {
	s := newTestStore(t)

	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "second"},
		{Role: domain.RoleUser, Content: "third"},
	}
	for _, m := range msgs {
		if err := s.AppendMessage(m); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(got))
	}
	for i := range msgs {
		if got[i] != msgs[i] {
			t.Errorf("message %d: got %+v, want %+v", i, got[i], msgs[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty transcript, got %d messages", len(got))
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendMessage(domain.Message{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty transcript after clear, got %d messages", len(got))
	}

	// The store keeps accepting messages after a clear.
	if err := s.AppendMessage(domain.Message{Role: domain.RoleUser, Content: "again"}); err != nil {
		t.Fatal(err)
	}
	got, err = s.ListMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "again" {
		t.Errorf("unexpected transcript after clear: %+v", got)
	}
}
