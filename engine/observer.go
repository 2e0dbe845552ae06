package engine

import "github.com/signaldeck/shell-engine/observability"

// Engine event types emitted during the evaluate/fulfil cycle.
const (
	EventEvalStart     observability.EventType = "engine.eval.start"
	EventCallIssued    observability.EventType = "engine.call.issued"
	EventLocalResolved observability.EventType = "engine.local.resolved"
	EventResume        observability.EventType = "engine.resume"
	EventComplete      observability.EventType = "engine.complete"
	EventError         observability.EventType = "engine.error"
)
