package state

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionTerminal = errors.New("session is terminal")
	ErrEmptyRole       = errors.New("message role is empty")
)

// ToolInvocation records one resolved tool call attached to a message. It is
// always fully resolved (result or error) before the owning message is
// appended; no partially-applied tool state ever reaches the transcript.
type ToolInvocation struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Message is one immutable transcript entry.
type Message struct {
	Seq         int              `json:"seq"`
	RoleID      string           `json:"role_id"`
	Content     string           `json:"content"`
	Invocations []ToolInvocation `json:"invocations,omitempty"`
	At          time.Time        `json:"at"`
}

// Phase is the coordinator's conversation phase. Phases only move forward.
type Phase int

const (
	PhaseGatherSymptoms Phase = iota
	PhaseGatherAllergies
	PhaseSuggestOTC
	PhaseDelegate
)

func (p Phase) String() string {
	switch p {
	case PhaseGatherSymptoms:
		return "GATHER_SYMPTOMS"
	case PhaseGatherAllergies:
		return "GATHER_ALLERGIES"
	case PhaseSuggestOTC:
		return "SUGGEST_OTC"
	case PhaseDelegate:
		return "DELEGATE"
	default:
		return "UNKNOWN"
	}
}

// Session is one conversation: an append-only transcript, a round counter,
// a terminal flag and the last speaker. Concurrent callers must hold the turn
// lock for the full duration of a turn or reset; only one turn is ever in
// flight per session.
type Session struct {
	ID          string
	transcript  []Message
	Round       int
	Terminal    bool
	LastSpeaker string
	Phase       Phase

	CreatedAt time.Time
	nextSeq   int
	now       func() time.Time
	turnMu    sync.Mutex
}

func NewSession(id string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:        id,
		CreatedAt: now().UTC(),
		now:       now,
	}
}

// Lock acquires the session's turn lock. Two user messages for the same
// session are serialized here; distinct sessions stay concurrent.
func (s *Session) Lock() {
	s.turnMu.Lock()
}

// Unlock releases the turn lock.
func (s *Session) Unlock() {
	s.turnMu.Unlock()
}

// Append adds a message to the transcript, assigning its sequence number and
// timestamp, and updates the last speaker. Appended messages are never
// mutated or removed.
func (s *Session) Append(roleID, content string, invocations []ToolInvocation) (Message, error) {
	if roleID == "" {
		return Message{}, ErrEmptyRole
	}
	msg := Message{
		Seq:         s.nextSeq,
		RoleID:      roleID,
		Content:     content,
		Invocations: invocations,
		At:          s.now().UTC(),
	}
	s.nextSeq++
	s.transcript = append(s.transcript, msg)
	s.LastSpeaker = roleID
	return msg, nil
}

// Transcript returns the full ordered message log.
func (s *Session) Transcript() []Message {
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Since returns the ordered messages with Seq >= start.
func (s *Session) Since(start int) []Message {
	out := make([]Message, 0, len(s.transcript))
	for _, m := range s.transcript {
		if m.Seq >= start {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the transcript length.
func (s *Session) Len() int {
	return len(s.transcript)
}

// NextSeq returns the sequence number the next appended message will get.
func (s *Session) NextSeq() int {
	return s.nextSeq
}

// BeginTurn prepares the session for a new user message: the round counter
// restarts and a previously terminal session becomes live again.
func (s *Session) BeginTurn() {
	s.Round = 0
	s.Terminal = false
}

// AdvanceRound increments the round counter and marks the session terminal
// once cap rounds have run. It reports whether another round may start.
func (s *Session) AdvanceRound(cap int) bool {
	if s.Terminal {
		return false
	}
	s.Round++
	if s.Round >= cap {
		s.Terminal = true
	}
	return true
}

// AdvancePhase moves the coordinator phase forward. Regression requests are
// ignored: once a phase is reached it is never left for an earlier one.
func (s *Session) AdvancePhase(next Phase) {
	if next > s.Phase {
		s.Phase = next
	}
}

// Reset starts the session over with an empty transcript, round counter 0
// and the initial coordinator phase.
func (s *Session) Reset() {
	s.transcript = nil
	s.nextSeq = 0
	s.Round = 0
	s.Terminal = false
	s.LastSpeaker = ""
	s.Phase = PhaseGatherSymptoms
}
