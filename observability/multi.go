package observability

import "context"

// MultiObserver fans an event stream out to several sinks, letting a console
// log to stderr while a recorder captures the same evaluate/fulfil events.
type MultiObserver struct {
	sinks []Observer
}

// NewMultiObserver creates a MultiObserver over the non-nil observers. Nil
// entries are dropped so callers can pass optional sinks unconditionally.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	sinks := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			sinks = append(sinks, obs)
		}
	}
	return &MultiObserver{sinks: sinks}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, sink := range m.sinks {
		sink.OnEvent(ctx, event)
	}
}
