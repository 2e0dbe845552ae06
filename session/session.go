// Package session holds the per-console state of the shell: command history,
// the host-call counter, the at-most-one pending host call, and the
// interpreter checkout slot. A session is owned by a single engine and is not
// safe for concurrent use.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/sandbox"
)

// PendingCall is a host call awaiting fulfilment. Cont is the frozen
// execution to resume with the host's answer; a nil Cont marks a
// command-originated call whose response is formatted directly instead of
// resumed. Displays carry render specs produced locally before the pause.
type PendingCall struct {
	CallID        string
	Cont          sandbox.Continuation
	OutputSoFar   string
	OriginSnippet string
	Method        string
	Params        map[string]any
	Displays      []render.Spec
}

// Session is the state of one console instance.
type Session struct {
	id          string
	history     []string
	callCounter uint64
	pending     *PendingCall
	interp      sandbox.Interpreter
	lastResult  value.Value
	hasResult   bool
	maxHistory  int
}

// New creates a session from configuration. The session is assigned a unique
// UUIDv7 identifier.
func New(cfg *Config) *Session {
	merged := DefaultConfig()
	merged.Merge(cfg)
	return &Session{
		id:         uuid.Must(uuid.NewV7()).String(),
		maxHistory: merged.MaxHistory,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// PushHistory records an input line. Blank input is not recorded; entries
// are stored trimmed. When the history cap is reached the oldest entries
// fall off.
func (s *Session) PushHistory(input string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return
	}
	s.history = append(s.history, trimmed)
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// History returns a defensive copy of the recorded inputs, oldest first.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// NextCallID returns a fresh host call identifier. IDs are unique and
// strictly increasing within a session.
func (s *Session) NextCallID() string {
	s.callCounter++
	return fmt.Sprintf("call_%d", s.callCounter)
}

// StorePending parks a host call. Single-flight discipline is enforced by
// the engine before issuing a new call.
func (s *Session) StorePending(p PendingCall) {
	s.pending = &p
}

// TakePending removes and returns the pending call when callID matches.
// On a mismatch the stored call stays untouched.
func (s *Session) TakePending(callID string) (PendingCall, bool) {
	if s.pending == nil || s.pending.CallID != callID {
		return PendingCall{}, false
	}
	p := *s.pending
	s.pending = nil
	return p, true
}

// HasPending reports whether a host call is awaiting fulfilment.
func (s *Session) HasPending() bool { return s.pending != nil }

// PendingID returns the id of the pending call, or "".
func (s *Session) PendingID() string {
	if s.pending == nil {
		return ""
	}
	return s.pending.CallID
}

// StoreInterpreter checks the interpreter back into the session.
func (s *Session) StoreInterpreter(in sandbox.Interpreter) {
	s.interp = in
}

// TakeInterpreter checks the interpreter out. While checked out (paused
// executions, in-flight evals) the slot is empty and a second checkout
// reports false.
func (s *Session) TakeInterpreter() (sandbox.Interpreter, bool) {
	if s.interp == nil {
		return nil, false
	}
	in := s.interp
	s.interp = nil
	return in, true
}

// SetLastResult records the value of the most recent completed expression.
func (s *Session) SetLastResult(v value.Value) {
	s.lastResult = v
	s.hasResult = true
}

// LastResult returns the most recent expression value, if any.
func (s *Session) LastResult() (value.Value, bool) {
	return s.lastResult, s.hasResult
}
