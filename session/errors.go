package session

import "errors"

var (
	// ErrCallPending is returned when a new evaluation is attempted while a
	// host call awaits fulfilment.
	ErrCallPending = errors.New("a host call is already pending for this session")

	// ErrNoPendingCall is returned when fulfilment names a call id that is
	// not the stored pending call.
	ErrNoPendingCall = errors.New("no pending host call with that id")

	// ErrSessionDead is returned after a fatal interpreter failure; the
	// session must be reset before further evaluation.
	ErrSessionDead = errors.New("session interpreter is dead; reset required")
)
