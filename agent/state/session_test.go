package state

import (
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestSessionAppend(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", fixedClock())

	first, err := s.Append("User", "hello", nil)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second, err := s.Append("HealthCoordinator", "hi there", nil)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if first.Seq != 0 || second.Seq != 1 {
		t.Fatalf("sequence numbers wrong: %d, %d", first.Seq, second.Seq)
	}
	if s.LastSpeaker != "HealthCoordinator" {
		t.Fatalf("LastSpeaker = %q", s.LastSpeaker)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}

	if _, err := s.Append("", "anonymous", nil); err != ErrEmptyRole {
		t.Fatalf("expected ErrEmptyRole, got %v", err)
	}
}

func TestSessionSince(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", fixedClock())
	for _, content := range []string{"a", "b", "c", "d"} {
		if _, err := s.Append("User", content, nil); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	tail := s.Since(2)
	if len(tail) != 2 {
		t.Fatalf("Since(2) returned %d messages", len(tail))
	}
	if tail[0].Content != "c" || tail[1].Content != "d" {
		t.Fatalf("unexpected tail: %+v", tail)
	}
}

func TestSessionRounds(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", fixedClock())

	for i := 1; i <= 3; i++ {
		if !s.AdvanceRound(3) {
			t.Fatalf("round %d should start", i)
		}
	}
	if !s.Terminal {
		t.Fatalf("session should be terminal at the cap")
	}
	if s.AdvanceRound(3) {
		t.Fatalf("no round may start after the cap")
	}
	if s.Round != 3 {
		t.Fatalf("Round = %d, want 3", s.Round)
	}

	s.BeginTurn()
	if s.Terminal || s.Round != 0 {
		t.Fatalf("BeginTurn should revive the session: terminal=%v round=%d", s.Terminal, s.Round)
	}
	if !s.AdvanceRound(3) {
		t.Fatalf("revived session should run rounds again")
	}
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", fixedClock())
	if _, err := s.Append("User", "hello", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	s.AdvanceRound(30)
	s.AdvancePhase(PhaseDelegate)

	s.Reset()

	if s.Len() != 0 || s.Round != 0 || s.Terminal || s.LastSpeaker != "" {
		t.Fatalf("Reset left state behind: %+v", s)
	}
	if s.Phase != PhaseGatherSymptoms {
		t.Fatalf("Reset should restore the initial phase, got %v", s.Phase)
	}
	if s.NextSeq() != 0 {
		t.Fatalf("Reset should restart sequence numbers, got %d", s.NextSeq())
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(fixedClock())

	var created, removed int
	r.SetLifecycleHooks(func() { created++ }, func() { removed++ })

	s1 := r.GetOrCreate("alpha")
	if again := r.GetOrCreate("alpha"); again != s1 {
		t.Fatalf("GetOrCreate should return the same session")
	}
	if created != 1 {
		t.Fatalf("create hook fired %d times", created)
	}

	anon := r.GetOrCreate("")
	if anon.ID == "" {
		t.Fatalf("empty id should get a generated one")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d", r.Len())
	}

	if _, err := s1.Append("User", "hi", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	r.Reset("alpha")
	if s1.Len() != 0 {
		t.Fatalf("Reset did not clear the session")
	}

	r.Remove("alpha")
	if r.Len() != 1 || removed != 1 {
		t.Fatalf("Remove bookkeeping wrong: len=%d removed=%d", r.Len(), removed)
	}
}
